package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justsurfingit/hiring-pipeline/internal/client"
)

// settings is the CLI configuration after flags, env and config file are merged.
type settings struct {
	APIURL  string        `mapstructure:"api_url"`
	Actor   string        `mapstructure:"actor"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type cli struct {
	v        *viper.Viper
	cfgFile  string
	settings settings
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "pipelinectl",
		Short: "Work the hiring pipeline from the terminal",
		Long: `pipelinectl shows a job's hiring pipeline and moves candidates between stages.
Moves are shown immediately and rolled back if the server rejects them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default $HOME/.pipelinectl.yaml)")
	root.PersistentFlags().String("api-url", "", "pipeline API base URL")
	root.PersistentFlags().String("actor", "", "name recorded on stage changes")
	root.PersistentFlags().Duration("timeout", 0, "request timeout")
	c.v.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))
	c.v.BindPFlag("actor", root.PersistentFlags().Lookup("actor"))
	c.v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	root.AddCommand(newBoardCmd(c), newMoveCmd(c), newAuthCmd())
	return root
}

func (c *cli) load() error {
	c.v.SetDefault("api_url", "http://localhost:8080")
	c.v.SetDefault("actor", "")
	c.v.SetDefault("timeout", 10*time.Second)

	c.v.SetEnvPrefix("PIPELINECTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		c.v.SetConfigFile(filepath.Join(home, ".pipelinectl.yaml"))
	}
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := c.v.Unmarshal(&c.settings); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if c.settings.APIURL == "" {
		return errors.New("api_url is required")
	}
	return nil
}

func (c *cli) client() *client.Client {
	return client.New(c.settings.APIURL,
		client.WithActor(c.settings.Actor),
		client.WithHTTPClient(newHTTPClient(c.settings.Timeout)),
	)
}

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/justsurfingit/hiring-pipeline/internal/auth"
	"github.com/justsurfingit/hiring-pipeline/internal/board"
	"github.com/justsurfingit/hiring-pipeline/internal/client"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func newBoardCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board <job-id>",
		Short:   "Show a job's pipeline grouped by stage",
		Args:    cobra.ExactArgs(1),
		Example: `  pipelinectl board 3f1c... --query anna`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job ID: %w", err)
			}
			query, _ := cmd.Flags().GetString("query")

			b, err := c.client().Pipeline(cmd.Context(), jobID, query)
			if err != nil {
				return fmt.Errorf("fetch pipeline: %w", err)
			}
			cmd.Println(renderBoard(&b.Job, b.Stages))
			return nil
		},
	}
	cmd.Flags().StringP("query", "q", "", "only show candidates whose name or email contains this text")
	return cmd
}

func newMoveCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <application-id> <stage>",
		Short: "Move an application to another stage",
		Args:  cobra.ExactArgs(2),
		Example: `  pipelinectl move 9b2e... onsite --note "strong phone screen"
  PIPELINECTL_ACTOR=recruiter@example.com pipelinectl move 9b2e... offer`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid application ID: %w", err)
			}
			to := args[1]
			note, _ := cmd.Flags().GetString("note")

			ctx := cmd.Context()
			api := c.client()
			app, err := api.Application(ctx, appID)
			if err != nil {
				return fmt.Errorf("fetch application: %w", err)
			}
			job, err := api.Job(ctx, app.JobID)
			if err != nil {
				return fmt.Errorf("fetch job: %w", err)
			}
			apps, err := api.Applications(ctx, client.ApplicationQuery{JobID: job.ID})
			if err != nil {
				return fmt.Errorf("fetch applications: %w", err)
			}

			b := board.New(*job, apps)
			cmd.Printf("%s %s %s → %s\n", pendingStyle.Render("…"), app.CandidateName, app.Status, to)
			moved, err := b.Move(ctx, api, appID, to, note)
			if err != nil {
				cmd.Printf("%s move rolled back, %s stays in %s\n", errorStyle.Render("✗"), app.CandidateName, app.Status)
				return err
			}
			cmd.Printf("%s %s is now in %s (%d in stage)\n", okStyle.Render("✓"), moved.CandidateName, moved.Status, len(b.View("").Group(moved.Status)))
			if n := len(moved.StageHistory); n > 0 {
				last := moved.StageHistory[n-1]
				cmd.Printf("  %s %s\n", labelStyle.Render("Changed:"), last.ChangedAt.Local().Format("Jan 2, 2006 15:04"))
				if last.ChangedBy != "" {
					cmd.Printf("  %s %s\n", labelStyle.Render("By:"), last.ChangedBy)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("note", "n", "", "note recorded in the stage history")
	return cmd
}

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage integrations",
	}
	gmailCmd := &cobra.Command{
		Use:   "gmail",
		Short: "Authorize the server to send candidate emails through Gmail",
		RunE: func(cmd *cobra.Command, args []string) error {
			credentials, _ := cmd.Flags().GetString("credentials")
			token, _ := cmd.Flags().GetString("token")

			config, err := auth.LoadConfig(credentials)
			if err != nil {
				return err
			}
			if err := auth.AuthorizeFromWeb(cmd.Context(), config, token, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
			cmd.Println(okStyle.Render("✓") + " Gmail authorized")
			return nil
		},
	}
	gmailCmd.Flags().String("credentials", "credential.json", "OAuth client credentials file")
	gmailCmd.Flags().String("token", "token.json", "where to store the token")
	authCmd.AddCommand(gmailCmd)
	return authCmd
}

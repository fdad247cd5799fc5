package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNoToken means the consent flow has not been run yet for this token file.
var ErrNoToken = errors.New("gmail token not found; run `pipelinectl auth gmail`")

// LoadConfig reads the OAuth client (the App's ID) with permission to send mail.
func LoadConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret file: %w", err)
	}
	return config, nil
}

// GetGmailClient returns an HTTP client for the stored user session.
// It never prompts; a missing token yields ErrNoToken.
func GetGmailClient(ctx context.Context, config *oauth2.Config, tokFile string) (*http.Client, error) {
	tok, err := tokenFromFile(tokFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("read token: %w", err)
	}
	return config.Client(ctx, tok), nil
}

// NewGmailService builds a Gmail API client from the credential and token files.
func NewGmailService(ctx context.Context, credentialsFile, tokFile string) (*gmail.Service, error) {
	config, err := LoadConfig(credentialsFile)
	if err != nil {
		return nil, err
	}
	httpClient, err := GetGmailClient(ctx, config, tokFile)
	if err != nil {
		return nil, err
	}
	return gmail.NewService(ctx, option.WithHTTPClient(httpClient))
}

// AuthorizeFromWeb runs the consent flow: it prints the consent URL to out,
// reads the code from in and saves the resulting token to tokFile.
func AuthorizeFromWeb(ctx context.Context, config *oauth2.Config, tokFile string, in io.Reader, out io.Writer) error {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "\n---------------------------------------------------------\n")
	fmt.Fprintf(out, "OPEN THIS LINK TO AUTHORIZE SENDING CANDIDATE EMAILS:\n%v\n", authURL)
	fmt.Fprintf(out, "---------------------------------------------------------\n")
	fmt.Fprintf(out, "Paste the code here: ")

	var authCode string
	if _, err := fmt.Fscan(in, &authCode); err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("retrieve token from web: %w", err)
	}
	fmt.Fprintf(out, "Saving credential file to: %s\n", tokFile)
	return saveToken(tokFile, tok)
}

// Retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// Saves a token to a file path.
func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

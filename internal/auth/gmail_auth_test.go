package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestGetGmailClientWithoutToken(t *testing.T) {
	cfg := &oauth2.Config{ClientID: "id"}
	_, err := GetGmailClient(context.Background(), cfg, filepath.Join(t.TempDir(), "token.json"))
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Unix(1730000000, 0).UTC()}
	if err := saveToken(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Fatalf("token mismatch: %+v", got)
	}
	if _, err := GetGmailClient(context.Background(), &oauth2.Config{}, path); err != nil {
		t.Fatalf("client with stored token: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing credentials file")
	}
}

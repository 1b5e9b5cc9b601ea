package gsheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"signalwatcher/internal/ports"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// newOAuthClient builds an authorized HTTP client from the installed-app
// client secret and the cached token. An unreadable client secret is fatal;
// a missing or corrupt token cache only triggers a fresh authorization.
func newOAuthClient(ctx context.Context, credentialsPath, tokenPath string, logger ports.Logger) (*http.Client, error) {
	secret, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading client secret %s: %v", ports.ErrConfigurationError, credentialsPath, err)
	}
	oauthCfg, err := google.ConfigFromJSON(secret, sheets.SpreadsheetsScope, sheets.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing client secret %s: %v", ports.ErrConfigurationError, credentialsPath, err)
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		logger.Warn(ctx, "No usable cached token, starting interactive authorization", map[string]interface{}{"path": tokenPath, "reason": err.Error()})
		tok, err = tokenFromWeb(ctx, oauthCfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, tok); err != nil {
			// The client still works for this run; only the cache is lost.
			logger.Warn(ctx, "Failed to cache OAuth token", map[string]interface{}{"path": tokenPath, "error": err.Error()})
		}
	}
	return oauthCfg.Client(ctx, tok), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("corrupt token cache: %w", err)
	}
	return tok, nil
}

// tokenFromWeb runs the manual auth-code exchange: the operator opens the
// printed URL and pastes the code back on stdin.
func tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Authorize this app by visiting this url:\n%v\n", authURL)
	fmt.Print("Enter the code from that page here: ")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("%w: reading authorization code: %v", ports.ErrConfigurationError, err)
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging authorization code: %v", ports.ErrConfigurationError, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

package anilist

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"anipick/shared/config"
	"anipick/shared/logging"

	"golang.org/x/oauth2"
)

// AniList shows the authorization code on this page instead of redirecting.
const pinRedirectURL = "https://anilist.co/api/v2/oauth/pin"

var anilistEndpoint = oauth2.Endpoint{
	AuthURL:  "https://anilist.co/api/v2/oauth/authorize",
	TokenURL: "https://anilist.co/api/v2/oauth/token",
}

func newOAuthConfig(cfg *config.AniListConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  pinRedirectURL,
		Endpoint:     anilistEndpoint,
	}
}

// getToken loads a saved token, or walks the user through the PIN flow.
// AniList access tokens last a year and have no refresh token.
func getToken(config *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	tok, err := tokenFromFile(tokenFile)
	if err == nil && tok.Valid() {
		logging.Debug().Time("expiry", tok.Expiry).Msg("Loaded AniList token from file")
		return tok, nil
	}

	logging.Info().Msg("Getting new AniList token...")
	tok, err = getTokenWithPin(config, os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}

	if err := saveToken(tokenFile, tok); err != nil {
		logging.Warn().Err(err).Msg("Failed to save AniList token")
	}
	return tok, nil
}

func getTokenWithPin(config *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("anipick")

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(out, "ANILIST AUTHORIZATION REQUIRED\n")
	fmt.Fprintf(out, "%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(out, "1. Visit this URL in your browser and approve access:\n\n   %s\n\n", authURL)
	fmt.Fprintf(out, "2. Paste the code AniList shows you and press Enter: ")

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("no authorization code entered")
	}

	tok, err := config.Exchange(context.Background(), code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("AniList rejected the code (%s): %s", retrieveErr.Response.Status, strings.TrimSpace(string(retrieveErr.Body)))
		}
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	fmt.Fprintf(out, "\nAuthorization successful!\n%s\n\n", strings.Repeat("=", 80))
	return tok, nil
}

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

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}

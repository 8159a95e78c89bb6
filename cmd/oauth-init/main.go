// Command oauth-init walks through the Google OAuth consent flow once and
// saves the resulting token for the sheets export backend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const consentTimeout = 5 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "oauth-init:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}

	port := envOr("OAUTH_REDIRECT_PORT", "8085")
	// The OAuth client must list this redirect URI as authorized.
	cfg.RedirectURL = "http://localhost:" + port + "/callback"

	codes := make(chan string, 1)
	srv := callbackServer(port, codes)
	go func() { _ = srv.ListenAndServe() }()
	defer srv.Close()

	fmt.Println("Open this URL to authorize:")
	fmt.Println(cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	var code string
	select {
	case code = <-codes:
	case <-time.After(consentTimeout):
		return fmt.Errorf("no authorization after %s", consentTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	out := envOr("GOOGLE_OAUTH_TOKEN_FILE", "token.json")
	if err := saveToken(out, tok); err != nil {
		return err
	}
	fmt.Println("Saved token to", out)
	return nil
}

// loadClientConfig reads the OAuth client either inline from the environment
// or from a credentials file.
func loadClientConfig() (*oauth2.Config, error) {
	var raw []byte
	switch {
	case os.Getenv("GOOGLE_OAUTH_CLIENT_JSON") != "":
		raw = []byte(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	case os.Getenv("GOOGLE_OAUTH_CLIENT_FILE") != "":
		b, err := os.ReadFile(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
		if err != nil {
			return nil, fmt.Errorf("read client file: %w", err)
		}
		raw = b
	default:
		return nil, fmt.Errorf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}

	cfg, err := google.ConfigFromJSON(raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	return cfg, nil
}

func callbackServer(port string, codes chan<- string) *http.Server {
	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if msg := r.URL.Query().Get("error"); msg != "" {
			http.Error(w, "authorization refused: "+msg, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this tab.")
		select {
		case codes <- r.URL.Query().Get("code"):
		default:
		}
	})
	return srv
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calendar-mcp/internal/google"
)

// authCallbackTimeout bounds how long auth waits for the browser redirect.
const authCallbackTimeout = 5 * time.Minute

func newAuthCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize calendar-mcp to read your Google Calendar",
		Long: `Run the OAuth flow for an installed application and save the token.

The OAuth client is read from the configured credentials file. When
OAUTH_REDIRECT_PORT is set, a callback listener on that port receives the
authorization code. Otherwise the code is read from --code or stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			conf, err := google.OAuthConfig(cfg.Google)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			out := cmd.OutOrStdout()
			if code == "" {
				fmt.Fprintf(out, "Open the following URL in your browser and grant access:\n\n%s\n\n", google.AuthURL(conf))
				if cfg.Google.OAuthRedirectPort > 0 {
					code, err = waitForAuthCode(ctx, cfg.Google.OAuthRedirectPort)
				} else {
					fmt.Fprint(out, "Enter the authorization code: ")
					code, err = readAuthCode(cmd.InOrStdin())
				}
				if err != nil {
					return err
				}
			}

			if _, err := google.ExchangeAndSave(ctx, conf, code, cfg.Google.TokenFile); err != nil {
				return err
			}
			fmt.Fprintf(out, "Token saved to %s\n", cfg.Google.TokenFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code, skips the interactive prompt")

	return cmd
}

// readAuthCode reads one non-empty line from r.
func readAuthCode(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read authorization code: %w", err)
		}
		return "", errors.New("no authorization code given")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return "", errors.New("no authorization code given")
	}
	return code, nil
}

// waitForAuthCode serves the OAuth redirect on localhost:port and returns
// the code it carries.
func waitForAuthCode(ctx context.Context, port int) (string, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err != nil {
		return "", fmt.Errorf("failed to listen for the OAuth callback: %w", err)
	}

	codes := make(chan string, 1)
	errs := make(chan error, 1)
	srv := &http.Server{
		Handler:           authCallbackHandler(codes, errs),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Close() }()

	ctx, cancel := context.WithTimeout(ctx, authCallbackTimeout)
	defer cancel()

	select {
	case code := <-codes:
		return code, nil
	case err := <-errs:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for the OAuth callback: %w", ctx.Err())
	}
}

func authCallbackHandler(codes chan<- string, errs chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if msg := q.Get("error"); msg != "" {
			http.Error(w, "Authorization failed: "+msg, http.StatusBadRequest)
			select {
			case errs <- fmt.Errorf("authorization denied: %s", msg):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, "Authorization complete. You can close this window.\n")
		select {
		case codes <- code:
		default:
		}
	})
}

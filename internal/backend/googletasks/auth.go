package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"todo/internal/config"
)

const (
	// CallbackStartPort is the first local port tried for the OAuth callback.
	CallbackStartPort = 8085

	// callbackPortAttempts is how many consecutive ports are tried.
	callbackPortAttempts = 5

	// DefaultCallbackTimeout bounds the wait for the browser redirect.
	DefaultCallbackTimeout = 5 * time.Minute

	tokenExchangeTimeout = 30 * time.Second
	tokenCheckTimeout    = 10 * time.Second
)

// ErrNoRefreshToken means a stored token cannot be refreshed and login must
// run again.
var ErrNoRefreshToken = errors.New("token has no refresh token")

// OAuthConfig reads oauth_client.json from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oc, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oc, nil
}

// LoadToken reads a stored token. Tokens without a refresh token are rejected.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	if tok.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return &tok, nil
}

// SaveToken writes a token with mode 0600.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// TokenValid reports whether the stored token loads and can be refreshed.
func TokenValid(ctx context.Context, cfg *config.Config) bool {
	tok, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return false
	}
	oc, err := OAuthConfig(cfg)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, tokenCheckTimeout)
	defer cancel()
	_, err = oc.TokenSource(ctx, tok).Token()
	return err == nil
}

// LoopbackFlow runs the installed-app authorization code flow with PKCE,
// receiving the code on a localhost callback server.
type LoopbackFlow struct {
	Config *oauth2.Config

	// Prompt is called with the URL the user must open.
	Prompt func(authURL string)

	// Timeout bounds the wait for the callback. Zero means DefaultCallbackTimeout.
	Timeout time.Duration

	// StartPort overrides CallbackStartPort when non-zero.
	StartPort int
}

// Run listens for the callback, prompts with the consent URL and exchanges
// the returned code for a token.
func (f *LoopbackFlow) Run(ctx context.Context) (*oauth2.Token, error) {
	start := f.StartPort
	if start == 0 {
		start = CallbackStartPort
	}
	port, listener, err := listenLocal(start)
	if err != nil {
		return nil, errors.New("could not bind to local port for OAuth callback")
	}
	defer listener.Close()

	oc := *f.Config
	oc.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", callbackHandler(state, codeCh, errCh))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if f.Prompt != nil {
		f.Prompt(authURL)
	}

	timeout := f.Timeout
	if timeout == 0 {
		timeout = DefaultCallbackTimeout
	}

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(timeout):
		return nil, errors.New("oauth callback timed out")
	case <-ctx.Done():
		return nil, errors.New("cancelled")
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	tok, err := oc.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return tok, nil
}

func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			select {
			case errCh <- errors.New("no code in callback"):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	}
}

// listenLocal binds the first free localhost port starting at start.
func listenLocal(start int) (int, net.Listener, error) {
	for i := 0; i < callbackPortAttempts; i++ {
		l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", start+i))
		if err == nil {
			return l.Addr().(*net.TCPAddr).Port, l, nil
		}
	}
	return 0, nil, errors.New("no available port found")
}

// Package spotify wraps the Spotify Web API behind the listening-signal and
// sync surfaces the rest of the tool needs.
package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	zspotify "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	// Spotify requires an explicit IPv4 loopback redirect for local apps.
	redirectURI     = "http://127.0.0.1:8822/callback"
	callbackTimeout = 2 * time.Minute
)

var (
	ErrMissingCredentials = errors.New("missing spotify_id or spotify_secret configuration")
	ErrAuthTimeout        = errors.New("authentication timed out waiting for callback")
	ErrStateMismatch      = errors.New("oauth state mismatch")
)

// Authenticator runs the OAuth authorization-code flow and caches the
// resulting token on disk so subsequent commands skip the browser round trip.
type Authenticator struct {
	auth  *spotifyauth.Authenticator
	cache *TokenCache
}

func NewAuthenticator(clientID, clientSecret string) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	cache, err := DefaultTokenCache()
	if err != nil {
		return nil, fmt.Errorf("creating token cache: %w", err)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithRedirectURL(redirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserTopRead,
			spotifyauth.ScopeUserLibraryRead,
			spotifyauth.ScopeUserReadRecentlyPlayed,
			spotifyauth.ScopePlaylistReadPrivate,
		),
	)

	return &Authenticator{auth: auth, cache: cache}, nil
}

// Authenticate returns an authenticated API client, reusing the cached token
// when it still works and falling back to the full browser flow otherwise.
func (a *Authenticator) Authenticate(ctx context.Context) (*zspotify.Client, error) {
	token, err := a.cache.Load()
	if err != nil {
		return nil, fmt.Errorf("loading cached token: %w", err)
	}

	if token != nil {
		client := zspotify.New(a.auth.Client(ctx, token))
		if _, err := client.CurrentUser(ctx); err == nil {
			if refreshed, terr := client.Token(); terr == nil && refreshed.AccessToken != token.AccessToken {
				_ = a.cache.Save(refreshed)
			}
			return client, nil
		}
		fmt.Println("Cached token invalid, starting new authentication...")
	}

	return a.runOAuthFlow(ctx)
}

func (a *Authenticator) runOAuthFlow(ctx context.Context) (*zspotify.Client, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		a.handleCallback(w, r, state, tokenCh, errCh)
	})

	server := &http.Server{
		Addr:    "127.0.0.1:8822",
		Handler: mux,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	fmt.Println("\nTo authenticate, open this URL in your browser:")
	fmt.Println(a.auth.AuthURL(state))
	fmt.Println("\nWaiting for authentication...")

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
	case err := <-errCh:
		_ = server.Shutdown(ctx)
		return nil, err
	case <-time.After(callbackTimeout):
		_ = server.Shutdown(ctx)
		return nil, ErrAuthTimeout
	case <-ctx.Done():
		_ = server.Shutdown(ctx)
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	if err := a.cache.Save(token); err != nil {
		fmt.Printf("Warning: failed to cache token: %v\n", err)
	}

	return zspotify.New(a.auth.Client(ctx, token)), nil
}

func (a *Authenticator) handleCallback(w http.ResponseWriter, r *http.Request, expectedState string, tokenCh chan<- *oauth2.Token, errCh chan<- error) {
	if r.URL.Query().Get("state") != expectedState {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		errCh <- ErrStateMismatch
		return
	}
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, "Authentication failed: "+errMsg, http.StatusBadRequest)
		errCh <- fmt.Errorf("spotify auth error: %s", errMsg)
		return
	}

	token, err := a.auth.Token(r.Context(), expectedState, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		errCh <- fmt.Errorf("exchanging code for token: %w", err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You can close this window and return to the terminal.</p></body></html>")
	tokenCh <- token
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	return a.cache.Delete()
}

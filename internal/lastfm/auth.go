package lastfm

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

const (
	// AuthCallbackPort is the port used for the local OAuth callback server.
	AuthCallbackPort = 9847

	// AuthTimeout bounds how long the user has to authorize in the browser.
	AuthTimeout = 5 * time.Minute
)

// ErrNoToken is returned when the callback arrives without a token.
var ErrNoToken = errors.New("no token received")

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>Wavestream - Last.fm Authorization</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
{{if .}}<h1>Authorization Successful!</h1>
<p>You can close this window and return to the terminal.</p>
{{else}}<h1>Authorization Failed</h1>
<p>No token received. Please try again.</p>
{{end}}</body>
</html>`))

// AuthServer handles the OAuth callback flow.
type AuthServer struct {
	server   *http.Server
	listener net.Listener
	tokens   chan string
	done     chan struct{}
}

// StartAuthServer starts a local HTTP server receiving the OAuth callback
// on addr, ":9847" when empty.
func StartAuthServer(addr string) (*AuthServer, error) {
	if addr == "" {
		addr = fmt.Sprintf(":%d", AuthCallbackPort)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	as := &AuthServer{
		listener: listener,
		tokens:   make(chan string, 1),
		done:     make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", as.handleCallback)
	as.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = as.server.Serve(listener)
		close(as.done)
	}()

	return as, nil
}

// Addr returns the address the server listens on.
func (as *AuthServer) Addr() string {
	return as.listener.Addr().String()
}

// Last.fm redirects here after the user authorizes, with the token in the
// query string.
func (as *AuthServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	w.Header().Set("Content-Type", "text/html")
	_ = callbackPage.Execute(w, token != "")

	select {
	case as.tokens <- token:
	default:
	}
}

// WaitToken blocks until the callback delivers a token or ctx ends.
func (as *AuthServer) WaitToken(ctx context.Context) (string, error) {
	select {
	case token := <-as.tokens:
		if token == "" {
			return "", ErrNoToken
		}
		return token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops the auth server.
func (as *AuthServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = as.server.Shutdown(ctx)
	<-as.done
}

// Authorize runs the desktop auth flow: it opens the authorization page,
// waits for the callback and exchanges the token for a session.
func Authorize(ctx context.Context, client *Client, out io.Writer) (username, sessionKey string, err error) {
	as, err := StartAuthServer("")
	if err != nil {
		return "", "", err
	}
	defer as.Shutdown()

	token, err := client.GetToken()
	if err != nil {
		return "", "", err
	}

	authURL := client.GetAuthURL(token)
	fmt.Fprintf(out, "Authorize wavestream in your browser:\n  %s\n", authURL)
	if err := OpenBrowser(authURL); err != nil {
		fmt.Fprintln(out, "Could not open a browser, open the link above manually.")
	}

	ctx, cancel := context.WithTimeout(ctx, AuthTimeout)
	defer cancel()
	// The desktop flow may not redirect; the token requested above is the
	// one the user authorizes, so a timeout on the callback is not fatal.
	if cbToken, err := as.WaitToken(ctx); err == nil {
		token = cbToken
	} else if !errors.Is(err, context.DeadlineExceeded) {
		return "", "", err
	}

	return client.GetSession(token)
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

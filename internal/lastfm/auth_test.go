package lastfm

import (
	"context"
	"io"
	"net/http"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServer_ReceivesToken(t *testing.T) {
	as, err := StartAuthServer("127.0.0.1:0")
	require.NoError(t, err)
	defer as.Shutdown()

	resp, err := http.Get("http://" + as.Addr() + "/callback?token=test-token-123")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "Authorization Successful")

	token, err := as.WaitToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-token-123", token)
}

func TestAuthServer_MissingToken(t *testing.T) {
	as, err := StartAuthServer("127.0.0.1:0")
	require.NoError(t, err)
	defer as.Shutdown()

	resp, err := http.Get("http://" + as.Addr() + "/callback")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "Authorization Failed")

	_, err = as.WaitToken(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestAuthServer_WaitTokenTimeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		as := &AuthServer{tokens: make(chan string, 1)}

		ctx, cancel := context.WithTimeout(context.Background(), AuthTimeout)
		defer cancel()

		start := time.Now()
		_, err := as.WaitToken(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, AuthTimeout, time.Since(start))
	})
}

//nolint:noctx // Test file uses http.Get for convenience; context not required in tests
package oauth

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer starts a callback server on a free port.
func startServer(t *testing.T, state string) *CallbackServer {
	t.Helper()
	server := NewCallbackServer(0, state)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func callback(t *testing.T, server *CallbackServer, params url.Values) (int, string) {
	t.Helper()
	resp, err := http.Get(baseURL(server) + "/callback?" + params.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func baseURL(server *CallbackServer) string {
	return "http://127.0.0.1:" + strconv.Itoa(server.Port())
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestCallbackServer_PicksFreePort(t *testing.T) {
	server := startServer(t, "s")

	assert.NotZero(t, server.Port())
	assert.Contains(t, server.RedirectURI(), "http://localhost:")
	assert.Contains(t, server.RedirectURI(), "/callback")
}

func TestCallbackServer_DeliversCode(t *testing.T) {
	server := startServer(t, "state-123")

	status, body := callback(t, server, url.Values{"code": {"abc"}, "state": {"state-123"}})

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Authorization successful")
	code, err := server.WaitForCode(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
}

func TestCallbackServer_StateMismatch(t *testing.T) {
	server := startServer(t, "expected")

	status, _ := callback(t, server, url.Values{"code": {"abc"}, "state": {"EXPECTED"}})

	assert.Equal(t, http.StatusBadRequest, status)
	_, err := server.WaitForCode(waitCtx(t))
	assert.ErrorIs(t, err, ErrStateMismatch)
}

func TestCallbackServer_ExpectStateAfterStart(t *testing.T) {
	server := startServer(t, "")
	server.ExpectState("late")

	callback(t, server, url.Values{"code": {"xyz"}, "state": {"late"}})

	code, err := server.WaitForCode(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "xyz", code)
}

func TestCallbackServer_MissingCode(t *testing.T) {
	server := startServer(t, "s")

	status, _ := callback(t, server, url.Values{"state": {"s"}})

	assert.Equal(t, http.StatusBadRequest, status)
	_, err := server.WaitForCode(waitCtx(t))
	assert.ErrorContains(t, err, "no authorization code")
}

func TestCallbackServer_ProviderError(t *testing.T) {
	server := startServer(t, "s")

	_, body := callback(t, server, url.Values{
		"error":             {"access_denied"},
		"error_description": {"<b>denied</b>"},
	})

	assert.Contains(t, body, "&lt;b&gt;denied&lt;/b&gt;")
	_, err := server.WaitForCode(waitCtx(t))
	assert.ErrorContains(t, err, "access_denied")
}

func TestCallbackServer_WaitHonoursContext(t *testing.T) {
	server := startServer(t, "s")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := server.WaitForCode(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCallbackServer_OtherPathsNotFound(t *testing.T) {
	server := startServer(t, "s")

	resp, err := http.Get(baseURL(server) + "/")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCallbackServer_StopTwice(t *testing.T) {
	server := NewCallbackServer(0, "s")
	assert.NoError(t, server.Stop(), "not started")
	require.NoError(t, server.Start())
	assert.NoError(t, server.Stop())
	assert.NoError(t, server.Stop())
}

func TestCallbackServer_PortInUse(t *testing.T) {
	first := startServer(t, "s")

	second := NewCallbackServer(first.Port(), "s")
	assert.Error(t, second.Start())
}

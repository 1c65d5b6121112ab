package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTokeninfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.NotEmpty(t, r.URL.Query().Get("access_token"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifiedEmail(t *testing.T) {
	srv := newTokeninfoServer(t, http.StatusOK,
		`{"email":"ana@example.com","email_verified":"true","aud":"client-1"}`)

	v := &Verifier{Endpoint: srv.URL, ClientID: "client-1"}
	email, err := v.VerifiedEmail(context.Background(), "provider-token")
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", email)
}

func TestVerifiedEmailRejectedByProvider(t *testing.T) {
	srv := newTokeninfoServer(t, http.StatusBadRequest, `{"error":"invalid_token"}`)

	v := &Verifier{Endpoint: srv.URL}
	_, err := v.VerifiedEmail(context.Background(), "bad-token")
	require.ErrorIs(t, err, ErrTokenRejected)
}

func TestVerifiedEmailWrongAudience(t *testing.T) {
	srv := newTokeninfoServer(t, http.StatusOK,
		`{"email":"ana@example.com","email_verified":"true","aud":"someone-else"}`)

	v := &Verifier{Endpoint: srv.URL, ClientID: "client-1"}
	_, err := v.VerifiedEmail(context.Background(), "provider-token")
	require.ErrorIs(t, err, ErrTokenRejected)
}

func TestVerifiedEmailUnverified(t *testing.T) {
	srv := newTokeninfoServer(t, http.StatusOK,
		`{"email":"ana@example.com","email_verified":"false","aud":"client-1"}`)

	v := &Verifier{Endpoint: srv.URL, ClientID: "client-1"}
	_, err := v.VerifiedEmail(context.Background(), "provider-token")
	require.ErrorIs(t, err, ErrEmailNotVerified)
}

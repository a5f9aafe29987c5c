package verify_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obiora/bankcore/infra/verify"
)

func newClient(t *testing.T, handler http.Handler) *verify.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return verify.New(srv.URL, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestVerifyPIN(t *testing.T) {
	var calls int
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/pin/verify", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": true})
	}))

	ok, err := client.VerifyPIN(context.Background(), "0123456789", "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	// Too-short PINs are rejected locally, no call goes out.
	ok, err = client.VerifyPIN(context.Background(), "0123456789", "12")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestVerifyOTP_ShapeCheckedLocally(t *testing.T) {
	var calls int
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/otp/verify", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": false})
	}))

	for _, otp := range []string{"12345", "1234567", ""} {
		ok, err := client.VerifyOTP(context.Background(), "0123456789", otp)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Zero(t, calls)

	ok, err := client.VerifyOTP(context.Background(), "0123456789", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestVerify_ServiceErrorSurfaces(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.VerifyPIN(context.Background(), "0123456789", "1234")
	assert.Error(t, err)
}

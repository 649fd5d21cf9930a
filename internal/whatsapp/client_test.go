package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context, string) (string, error) {
	return s.token, s.err
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(staticTokens{token: "tok-123"}, srv.URL, discardLog())
	err := c.SendMessage(context.Background(), "chan-1", "5215559999", "hola")
	require.NoError(t, err)

	assert.Equal(t, "/chan-1/messages", gotPath)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "whatsapp", gotPayload["messaging_product"])
	assert.Equal(t, "5215559999", gotPayload["to"])
	text, ok := gotPayload["text"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hola", text["body"])
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(staticTokens{token: "expired"}, srv.URL, discardLog())
	err := c.SendMessage(context.Background(), "chan-1", "5215559999", "hola")
	assert.ErrorContains(t, err, "401")
}

func TestSendMessageNoToken(t *testing.T) {
	c := NewClient(staticTokens{err: ErrNoToken}, "http://unused", discardLog())
	err := c.SendMessage(context.Background(), "chan-1", "5215559999", "hola")
	assert.ErrorIs(t, err, ErrNoToken)
}

package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobi-ak/invoiceflow/internal/llm"
)

func TestGenerate_RequestShape(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "llama-3.1-8b-instant"}, nil)

	out, err := c.Generate(context.Background(), "extract the invoice", "Invoice INV-1 Total 30.00")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "llama-3.1-8b-instant", gotBody["model"])

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	sys := msgs[0].(map[string]any)
	usr := msgs[1].(map[string]any)
	assert.Equal(t, "system", sys["role"])
	assert.Equal(t, "extract the invoice", sys["content"])
	assert.Equal(t, "user", usr["role"])
	assert.Equal(t, "Invoice INV-1 Total 30.00", usr["content"])
}

func TestGenerate_Non2xxIsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)

	_, err := c.Generate(context.Background(), "sys", "doc")
	require.Error(t, err)

	var be *llm.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, llm.BackendGroq, be.Backend)
	assert.Equal(t, http.StatusTooManyRequests, be.Status)
	assert.NotNil(t, be.Cause)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)

	_, err := c.Generate(context.Background(), "sys", "doc")
	var be *llm.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, llm.BackendGroq, be.Backend)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	assert.Equal(t, "https://api.groq.com/openai/v1", c.cfg.BaseURL)
	assert.Equal(t, "llama-3.1-8b-instant", c.cfg.Model)
	assert.Equal(t, llm.BackendGroq, c.Name())
}

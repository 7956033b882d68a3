package vestaboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText(t *testing.T) {
	var gotKey, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotKey = r.Header.Get("X-Vestaboard-Read-Write-Key")

		var body struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotText = body.Text

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.SetBaseURL(srv.URL)

	require.NoError(t, c.SendText(context.Background(), "--- MARCH 10 ---\n09:00 Standup"))
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "--- MARCH 10 ---\n09:00 Standup", gotText)
}

func TestSendTextNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("wrong")
	c.SetBaseURL(srv.URL)

	err := c.SendText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewClient("").IsConfigured())
	assert.True(t, NewClient("key").IsConfigured())
}

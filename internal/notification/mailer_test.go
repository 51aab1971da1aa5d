package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClient_Send(t *testing.T) {
	var got mailPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "alerts@phegonbank.com")

	err := client.Send(context.Background(), "ada@test.com", "Credit Alert", "Hi Ada")
	require.NoError(t, err)

	assert.Equal(t, "alerts@phegonbank.com", got.From)
	assert.Equal(t, "ada@test.com", got.To)
	assert.Equal(t, "Credit Alert", got.Subject)
	assert.Equal(t, "Hi Ada", got.Body)
}

func TestGatewayClient_Send_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mailbox unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "alerts@phegonbank.com")

	err := client.Send(context.Background(), "ada@test.com", "Credit Alert", "Hi Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGatewayClient_Send_Unreachable(t *testing.T) {
	client := NewGatewayClient("http://127.0.0.1:1", "alerts@phegonbank.com")

	err := client.Send(context.Background(), "ada@test.com", "Credit Alert", "Hi Ada")
	require.Error(t, err)
}

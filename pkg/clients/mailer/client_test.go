package mailer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshg28/stockroom/internal/config"
	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/pkg/clients/mailer"
)

func Test_Send_PostsMessagePayload(t *testing.T) {
	var captured map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/messages", r.URL.Path)

		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "api", user)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1","message":"queued"}`))
	}))
	defer server.Close()

	client := mailer.NewClient(config.MailConfig{
		BaseURL:     server.URL,
		APIKey:      "key-123",
		Sender:      "stockroom@stockroom.example",
		HeadAddress: "head@stockroom.example",
	})

	err := client.Send(context.Background(), models.Notification{
		Subject:       "Issued: esp32 x1",
		RecipientRole: models.PartyGaurav,
		Body:          "Harsh issued 1 x esp32 to Gaurav.",
	})
	require.NoError(t, err)

	assert.Equal(t, "stockroom@stockroom.example", captured["from"])
	assert.Equal(t, "Issued: esp32 x1", captured["subject"])
	assert.Contains(t, captured["text"], "For Gaurav:")
	assert.Contains(t, captured["text"], "Harsh issued 1 x esp32")
}

func Test_Send_SurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad api key","code":401}`))
	}))
	defer server.Close()

	client := mailer.NewClient(config.MailConfig{
		BaseURL:     server.URL,
		APIKey:      "wrong",
		Sender:      "stockroom@stockroom.example",
		HeadAddress: "head@stockroom.example",
	})

	err := client.Send(context.Background(), models.Notification{Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad api key")
}

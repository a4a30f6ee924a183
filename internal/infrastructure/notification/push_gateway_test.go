package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appnotification "github.com/homechef/backend/internal/application/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPushGateway_Send(t *testing.T) {
	var received pushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"results":[
			{"message_id":"m1"},
			{"error":"NotRegistered"},
			{"error":"Unavailable"},
			{"token":"tok-d","error":"InvalidRegistration"}
		]}`))
	}))
	defer srv.Close()

	gw := NewHTTPPushGateway(PushGatewayConfig{URL: srv.URL, APIKey: "key-1"}, nil)
	invalid, err := gw.Send(context.Background(), []string{"tok-a", "tok-b", "tok-c", "tok-d"}, appnotification.PushMessage{
		Title: "Order ready",
		Body:  "Pick it up",
		Data:  map[string]string{"kind": "ORDER_READY"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-b", "tok-d"}, invalid)

	assert.Equal(t, []string{"tok-a", "tok-b", "tok-c", "tok-d"}, received.Tokens)
	assert.Equal(t, "Order ready", received.Notification.Title)
	assert.Equal(t, "ORDER_READY", received.Data["kind"])
}

func TestHTTPPushGateway_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad api key"}}`))
	}))
	defer srv.Close()

	gw := NewHTTPPushGateway(PushGatewayConfig{URL: srv.URL}, nil)
	_, err := gw.Send(context.Background(), []string{"tok"}, appnotification.PushMessage{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad api key")
}

func TestHTTPPushGateway_NoTokens(t *testing.T) {
	gw := NewHTTPPushGateway(PushGatewayConfig{URL: "http://127.0.0.1:1"}, nil)
	invalid, err := gw.Send(context.Background(), nil, appnotification.PushMessage{})
	assert.NoError(t, err)
	assert.Nil(t, invalid)
}

package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendMessage_Success(t *testing.T) {
	var gotTo, gotFrom, gotBody string
	var gotUser string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.FormValue("To")
		gotFrom = r.FormValue("From")
		gotBody = r.FormValue("Body")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "AC_test", "token", "+15550009999", zap.NewNop())

	err := client.SendMessage(context.Background(), "+15551234567", "High blood pressure: 150/95")

	require.NoError(t, err)
	assert.Equal(t, "AC_test", gotUser)
	assert.Equal(t, "+15551234567", gotTo)
	assert.Equal(t, "+15550009999", gotFrom)
	assert.Equal(t, "High blood pressure: 150/95", gotBody)
}

func TestSendMessage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":21211,"error_message":"Invalid 'To' phone number"}`))
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "AC_test", "token", "+15550009999", zap.NewNop())

	err := client.SendMessage(context.Background(), "not-a-phone", "hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid 'To' phone number")
}

func TestSendMessage_MissingTo(t *testing.T) {
	client := NewChatClient("http://localhost:0", "AC_test", "token", "+15550009999", zap.NewNop())

	err := client.SendMessage(context.Background(), "", "hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "to is required")
}

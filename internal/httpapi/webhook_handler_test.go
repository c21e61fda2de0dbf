package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChat struct {
	reply    string
	err      error
	lastFrom string
	lastBody string
}

func (f *fakeChat) HandleInbound(ctx context.Context, from, body string) (string, error) {
	f.lastFrom = from
	f.lastBody = body
	return f.reply, f.err
}

func postWebhook(t *testing.T, handler *WebhookHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	handler.HandleInbound(recorder, request)
	return recorder
}

func TestWebhook_Success(t *testing.T) {
	chat := &fakeChat{reply: "Logged blood pressure 130/85 (elevated)."}
	handler := NewWebhookHandler(chat, zap.NewNop())

	recorder := postWebhook(t, handler, url.Values{
		"From": {"+15551234567"},
		"Body": {"BP 130/85"},
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/xml", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(), "<Message>Logged blood pressure 130/85 (elevated).</Message>")
	assert.Equal(t, "+15551234567", chat.lastFrom)
	assert.Equal(t, "BP 130/85", chat.lastBody)
}

func TestWebhook_MissingFrom(t *testing.T) {
	handler := NewWebhookHandler(&fakeChat{}, zap.NewNop())

	recorder := postWebhook(t, handler, url.Values{"Body": {"BP 130/85"}})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "From and Body are required")
}

func TestWebhook_MissingBody(t *testing.T) {
	handler := NewWebhookHandler(&fakeChat{}, zap.NewNop())

	recorder := postWebhook(t, handler, url.Values{"From": {"+15551234567"}})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWebhook_ServiceErrorStillReturns200(t *testing.T) {
	chat := &fakeChat{err: fmt.Errorf("db down")}
	handler := NewWebhookHandler(chat, zap.NewNop())

	recorder := postWebhook(t, handler, url.Values{
		"From": {"+15551234567"},
		"Body": {"BP 130/85"},
	})

	// 网关侧不重试：业务失败也回 200，给发送者兜底文案
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "try again")
}

func TestWebhook_RouteRejectsGET(t *testing.T) {
	router := NewRouter(zap.NewNop())
	router.RegisterWebhookRoutes(NewWebhookHandler(&fakeChat{}, zap.NewNop()))

	request := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

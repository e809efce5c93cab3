package telegram_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/telegram-ragbot/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const getMeReply = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Rag","username":"ragbot"}}`

type recorded struct {
	method string
	form   url.Values
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []recorded
}

func (f *fakeAPI) recorded(method string) []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recorded
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

// newServer answers getMe and replies to every other method with reply and status
func newServer(t *testing.T, reply string, status int) (*httptest.Server, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		api.mu.Lock()
		api.calls = append(api.calls, recorded{method: method, form: r.PostForm})
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if method == "getMe" {
			_, _ = w.Write([]byte(getMeReply))
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, api
}

func TestClient_SetWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv, api := newServer(t, `{"ok":true,"result":true,"description":"Webhook was set"}`, http.StatusOK)
		c := telegram.NewClient("123:abc", telegram.WithBaseURL(srv.URL))

		err := c.SetWebhook(ctx, telegram.SetWebhookParams{
			URL:            "https://x.example/hook/webhook",
			SecretToken:    "s3cret",
			AllowedUpdates: []string{"message", "callback_query"},
		})

		require.NoError(t, err)
		calls := api.recorded("setWebhook")
		require.Len(t, calls, 1)
		assert.Equal(t, "https://x.example/hook/webhook", calls[0].form.Get("url"))
		assert.Equal(t, "s3cret", calls[0].form.Get("secret_token"))
		assert.JSONEq(t, `["message","callback_query"]`, calls[0].form.Get("allowed_updates"))
		assert.Empty(t, calls[0].form.Get("drop_pending_updates"))
	})

	t.Run("provider rejects", func(t *testing.T) {
		srv, _ := newServer(t, `{"ok":false,"error_code":400,"description":"Bad Request: bad webhook: HTTPS url must be provided for webhook"}`, http.StatusBadRequest)
		c := telegram.NewClient("123:abc", telegram.WithBaseURL(srv.URL))

		err := c.SetWebhook(ctx, telegram.SetWebhookParams{URL: "http://x.example"})

		var apiErr *telegram.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.Code)
		assert.Equal(t, "setWebhook", apiErr.Method)
		assert.Contains(t, apiErr.Description, "HTTPS url must be provided")
	})

	t.Run("non json body does not leak the token", func(t *testing.T) {
		srv, _ := newServer(t, `<html>bad gateway for /bot123:abc/setWebhook</html>`, http.StatusBadGateway)
		c := telegram.NewClient("123:abc", telegram.WithBaseURL(srv.URL))

		err := c.SetWebhook(ctx, telegram.SetWebhookParams{URL: "https://x.example"})

		require.Error(t, err)
		assert.NotContains(t, err.Error(), "123:abc")
		assert.Contains(t, err.Error(), "calling setWebhook")
	})
}

func TestClient_GetWebhookInfo(t *testing.T) {
	srv, api := newServer(t, `{"ok":true,"result":{"url":"https://x.example/hook/webhook","has_custom_certificate":false,"pending_update_count":3,"last_error_date":1700000000,"last_error_message":"Connection refused"}}`, http.StatusOK)
	c := telegram.NewClient("tok", telegram.WithBaseURL(srv.URL+"/"))

	info, err := c.GetWebhookInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://x.example/hook/webhook", info.URL)
	assert.Equal(t, 3, info.PendingUpdateCount)
	assert.Equal(t, int64(1700000000), info.LastErrorDate)
	assert.Equal(t, "Connection refused", info.LastErrorMessage)
	assert.Len(t, api.recorded("getWebhookInfo"), 1)
}

func TestClient_DeleteWebhook(t *testing.T) {
	srv, api := newServer(t, `{"ok":true,"result":true,"description":"Webhook is already deleted"}`, http.StatusOK)
	c := telegram.NewClient("tok", telegram.WithBaseURL(srv.URL))

	require.NoError(t, c.DeleteWebhook(context.Background(), true))
	calls := api.recorded("deleteWebhook")
	require.Len(t, calls, 1)
	assert.Equal(t, "true", calls[0].form.Get("drop_pending_updates"))
}

func TestClient_SendMessage(t *testing.T) {
	srv, api := newServer(t, `{"ok":true,"result":{"message_id":7,"chat":{"id":42,"type":"private"},"date":0,"text":"hi"}}`, http.StatusOK)
	c := telegram.NewClient("tok", telegram.WithBaseURL(srv.URL))

	require.NoError(t, c.SendMessage(context.Background(), 42, "hi"))
	require.NoError(t, c.SendMessage(context.Background(), 42, "again"))

	calls := api.recorded("sendMessage")
	require.Len(t, calls, 2)
	assert.Equal(t, "42", calls[0].form.Get("chat_id"))
	assert.Equal(t, "hi", calls[0].form.Get("text"))
	assert.Len(t, api.recorded("getMe"), 1, "getMe runs once per client")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := telegram.NewClient("123:secret", telegram.WithBaseURL(srv.URL))

	err := c.SendMessage(context.Background(), 1, "x")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "123:secret")
	assert.Contains(t, err.Error(), "calling getMe")
}

func TestClient_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})
	c := telegram.NewClient("tok", telegram.WithBaseURL(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.GetWebhookInfo(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

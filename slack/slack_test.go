package slack_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"listscribe/slack"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func webhook(t *testing.T, status int, reply string, got *map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		should.Equal(t, http.MethodPost, r.Method)
		should.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if got != nil {
			should.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.WriteHeader(status)
		io.WriteString(w, reply) // nolint: errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPostMessage(t *testing.T) {
	var got map[string]string
	srv := webhook(t, http.StatusOK, "ok", &got)

	client := slack.NewClient(srv.URL, srv.Client())
	must.NoError(t, client.PostMessage(context.Background(), "#groceries", "milk"))

	should.Equal(t, map[string]string{
		"channel":    "#groceries",
		"text":       "milk",
		"username":   "listscribe",
		"icon_emoji": ":shopping_trolley:",
	}, got)
}

func TestPostMessage_WithIdentity(t *testing.T) {
	var got map[string]string
	srv := webhook(t, http.StatusOK, "ok", &got)

	client := slack.NewClient(srv.URL, srv.Client(), slack.WithIdentity("grocer", ":carrot:"))
	must.NoError(t, client.PostMessage(context.Background(), "", "eggs"))

	should.Equal(t, "grocer", got["username"])
	should.Equal(t, ":carrot:", got["icon_emoji"])
	_, hasChannel := got["channel"]
	should.False(t, hasChannel, "empty channel is omitted so the webhook default applies")
}

func TestPostMessage_WebhookErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		want   string
	}{
		{name: "reason", status: http.StatusBadRequest, reply: "invalid_payload\n", want: "slack webhook: status 400: invalid_payload"},
		{name: "no reason", status: http.StatusNotFound, want: "slack webhook: status 404"},
		{name: "channel gone", status: http.StatusGone, reply: "channel_is_archived", want: "slack webhook: status 410: channel_is_archived"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := webhook(t, tt.status, tt.reply, nil)
			err := slack.NewClient(srv.URL, srv.Client()).PostMessage(context.Background(), "#groceries", "milk")

			var werr *slack.WebhookError
			must.ErrorAs(t, err, &werr)
			should.Equal(t, tt.status, werr.StatusCode)
			should.EqualError(t, err, tt.want)
		})
	}
}

func TestPostMessage_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	client := slack.NewClient("http://slack.invalid/hook", doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	}))

	err := client.PostMessage(context.Background(), "#groceries", "milk")
	should.ErrorIs(t, err, boom)
}

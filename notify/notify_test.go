package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"leave/initialize/viper"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDingTalk_SignedURL(t *testing.T) {
	d := NewDingTalk(viper.DingTalkConfig{RobotToken: "abc", Secret: "SEC"})
	d.now = func() time.Time { return time.UnixMilli(1700000000000) }
	u := d.getURL()
	want := hmacSha256("1700000000000\nSEC", "SEC")
	assert.True(t, strings.HasPrefix(u, dingTalkWebhook+"?access_token=abc&timestamp=1700000000000&sign="))
	assert.Contains(t, u, "sign="+strings.NewReplacer("+", "%2B", "/", "%2F", "=", "%3D").Replace(want))

	plain := NewDingTalk(viper.DingTalkConfig{RobotToken: "abc"})
	assert.Equal(t, dingTalkWebhook+"?access_token=abc", plain.getURL())
}

func TestDingTalk_Send(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr string
	}{
		{"ok", `{"errcode":0,"errmsg":"ok"}`, ""},
		{"rejected", `{"errcode":310000,"errmsg":"sign not match"}`, "sign not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "abc", r.URL.Query().Get("access_token"))
				var body struct {
					Msgtype string            `json:"msgtype"`
					Text    map[string]string `json:"text"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "text", body.Msgtype)
				assert.Equal(t, "hello team", body.Text["content"])
				_, _ = io.WriteString(w, tt.reply)
			}))
			defer srv.Close()
			d := NewDingTalk(viper.DingTalkConfig{RobotToken: "abc", Secret: "s"})
			d.webhook = srv.URL

			err := d.Send(context.Background(), "hello team")
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestTelegram_Send(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls[r.URL.Path]++
		mu.Unlock()
		switch r.URL.Path {
		case "/botTOKEN/getMe":
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"leave","username":"leave_bot"}}`)
		case "/botTOKEN/sendMessage":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "42", r.PostForm.Get("chat_id"))
			assert.Equal(t, "hello team", r.PostForm.Get("text"))
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"group"},"text":"hello team"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tg := NewTelegram(viper.TelegramConfig{BotToken: "TOKEN", ChatID: 42, APIEndpoint: srv.URL + "/bot%s/%s"})
	require.NoError(t, tg.Send(context.Background(), "hello team"))
	require.NoError(t, tg.Send(context.Background(), "hello team"))
	assert.Equal(t, 1, calls["/botTOKEN/getMe"])
	assert.Equal(t, 2, calls["/botTOKEN/sendMessage"])
}

func TestNewTelegram_DefaultEndpoint(t *testing.T) {
	tg := NewTelegram(viper.TelegramConfig{BotToken: "x", ChatID: 1})
	assert.Equal(t, "https://api.telegram.org/bot%s/%s", tg.endpoint)
}

type fakeSender struct {
	name string
	err  error
	got  []string
}

func (f *fakeSender) Name() string { return f.name }
func (f *fakeSender) Send(_ context.Context, text string) error {
	f.got = append(f.got, text)
	return f.err
}

func TestMulti(t *testing.T) {
	broken := &fakeSender{name: "broken", err: errors.New("down")}
	ok := &fakeSender{name: "ok"}
	m := NewMulti(broken, ok)
	m.Announce(context.Background(), "leave approved")
	assert.Equal(t, []string{"leave approved"}, broken.got)
	assert.Equal(t, []string{"leave approved"}, ok.got)
}

func TestNew(t *testing.T) {
	tests := []struct {
		cfg  *viper.NotifyConfig
		want int
	}{
		{nil, 0},
		{&viper.NotifyConfig{}, 0},
		{&viper.NotifyConfig{DingTalk: viper.DingTalkConfig{RobotToken: "t"}}, 1},
		{&viper.NotifyConfig{Telegram: viper.TelegramConfig{BotToken: "t"}}, 0},
		{&viper.NotifyConfig{
			DingTalk: viper.DingTalkConfig{RobotToken: "t"},
			Telegram: viper.TelegramConfig{BotToken: "t", ChatID: 9},
		}, 2},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.cfg).Len())
		})
	}
}

package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"leave/initialize/viper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Telegram 往一个群发消息，bot 第一次发送时才创建，创建失败下次重试
type Telegram struct {
	token    string
	chatID   int64
	endpoint string
	hc       *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegram(cfg viper.TelegramConfig) *Telegram {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &Telegram{
		token:    cfg.BotToken,
		chatID:   cfg.ChatID,
		endpoint: endpoint,
		hc:       &http.Client{Timeout: 5 * time.Second},
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) client() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.hc)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram bot")
	}
	t.bot = bot
	return bot, nil
}

// Send tgbotapi 不支持 context，超时由 http.Client 控制
func (t *Telegram) Send(_ context.Context, text string) error {
	bot, err := t.client()
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err = bot.Send(msg); err != nil {
		return errors.Wrap(err, "send telegram message")
	}
	return nil
}

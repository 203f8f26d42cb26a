package notify

import (
	"context"

	"leave/initialize/viper"

	"go.uber.org/zap"
)

// Sender 一个群通知渠道
type Sender interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Multi 把消息发到所有配置了的渠道，某个渠道失败只记日志
type Multi struct {
	senders []Sender
}

func NewMulti(senders ...Sender) *Multi {
	return &Multi{senders: senders}
}

// New 根据配置创建钉钉机器人和 Telegram 机器人，都没配置时是空操作
func New(cfg *viper.NotifyConfig) *Multi {
	m := NewMulti()
	if cfg == nil {
		return m
	}
	if cfg.DingTalk.RobotToken != "" {
		m.senders = append(m.senders, NewDingTalk(cfg.DingTalk))
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		m.senders = append(m.senders, NewTelegram(cfg.Telegram))
	}
	return m
}

func (m *Multi) Len() int { return len(m.senders) }

func (m *Multi) Announce(ctx context.Context, text string) {
	for _, s := range m.senders {
		if err := s.Send(ctx, text); err != nil {
			zap.L().Error("群通知发送失败", zap.String("channel", s.Name()), zap.Error(err))
		}
	}
}

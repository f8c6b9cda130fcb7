package poller

import (
	"fmt"

	"github.com/IT-Nick/quizbot/internal/infra/config"
	"gopkg.in/telebot.v4"
)

// NewPoller создаёт Poller в зависимости от режима: long polling или webhook
func NewPoller(cfg *config.Config) (telebot.Poller, error) {
	bot := cfg.TelegramBot
	switch bot.Mode {
	case config.ModeWebhook:
		if bot.WebhookURL == "" {
			return nil, fmt.Errorf("webhook mode requires telegram_bot.webhook_url")
		}
		return &telebot.Webhook{
			Listen: bot.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: bot.WebhookURL,
			},
		}, nil
	case config.ModePolling, "":
		return &telebot.LongPoller{Timeout: bot.PollTimeout}, nil
	default:
		return nil, fmt.Errorf("unknown telegram bot mode %q", bot.Mode)
	}
}

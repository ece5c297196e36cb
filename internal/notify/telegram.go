// Package notify sends optional run summaries over Telegram.
package notify

import (
	"fmt"
	"log"

	"ai-menu-assistant/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers one-way summary messages to a configured chat.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier initializes the Telegram notifier. It returns nil without
// error when the bot token or chat id is not configured; notifications are
// strictly optional.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Telegram notifications enabled as %s", bot.Self.UserName)

	return &Notifier{api: bot, chatID: cfg.TelegramChatID}, nil
}

// Send delivers a plain-text message to the configured chat.
func (n *Notifier) Send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

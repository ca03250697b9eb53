package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSender posts messages through the Telegram Bot API.
type TelegramSender struct {
	botToken      string
	defaultChatID string
	client        *http.Client
}

// NewTelegramSender creates a sender for the given bot token. defaultChatID
// may be empty, in which case Send is a no-op and only SendTo deliveries
// happen.
func NewTelegramSender(botToken, defaultChatID string) *TelegramSender {
	return &TelegramSender{
		botToken:      botToken,
		defaultChatID: defaultChatID,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramSender) Name() string { return "telegram" }

func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	if t.defaultChatID == "" {
		return nil
	}
	return t.SendTo(ctx, t.defaultChatID, title, message)
}

// SendTo delivers to a single chat. Telegram rejects HTML-unbalanced payloads,
// so the message is sent as plain text with the title prepended.
func (t *TelegramSender) SendTo(ctx context.Context, chatID, title, message string) error {
	text := message
	if title != "" {
		text = title + "\n\n" + message
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, t.botToken)
	return postJSON(ctx, t.client, "telegram", url, map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	})
}

var _ RecipientSender = (*TelegramSender)(nil)

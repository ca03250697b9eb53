package notify

import (
	"context"
	"net/http"
	"time"
)

// discordGreen is the embed accent color used for opportunity alerts.
const discordGreen = 0x2ecc71

// DiscordSender posts messages to a Discord webhook.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordSender) Name() string { return "discord" }

// Send posts one embed with the title and message body.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	return postJSON(ctx, d.client, "discord", d.webhookURL, map[string]any{
		"embeds": []map[string]any{
			{
				"title":       title,
				"description": message,
				"color":       discordGreen,
				"timestamp":   time.Now().UTC().Format(time.RFC3339),
			},
		},
	})
}

var _ Sender = (*DiscordSender)(nil)

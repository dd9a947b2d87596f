// Package notify provides a webhook client for announcing engagement events.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alumnet/engagement/internal/config"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/pkg/logger"
)

// Client handles outbound webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	log        *logger.Logger
}

// NewClient creates a new notification client.
func NewClient(cfg *config.NotificationsConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		log:        log,
	}
}

// Message represents a webhook message payload.
type Message struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text,omitempty"`
	IconURL  string `json:"icon_url,omitempty"`
}

// SendMessage posts a message to the configured webhook.
func (c *Client) SendMessage(msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifications are disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent webhook message")

	return nil
}

// SendBadgeAnnouncements announces recently awarded badges.
func (c *Client) SendBadgeAnnouncements(awards []models.UserBadge) error {
	if len(awards) == 0 {
		c.log.Debug().Msg("No recent badge awards, skipping announcement")
		return nil
	}

	text := fmt.Sprintf("### 🏅 New badges earned\n\n**%d** badge(s) awarded:\n\n", len(awards))
	for _, award := range awards {
		text += fmt.Sprintf("• **%s** (%s) earned by @%s\n",
			award.Badge.Name, award.Badge.Rarity, award.User.Username)
	}

	return c.SendMessage(&Message{
		Username: "Alumni Engagement Bot",
		Text:     text,
	})
}

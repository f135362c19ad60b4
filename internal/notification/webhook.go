// Package notification posts save outcomes to Discord-compatible webhooks.
package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type webhookMessage struct {
	Embeds []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Notifier sends fire-and-forget messages. Empty URLs disable the
// corresponding channel, so an unconfigured notifier is a no-op.
type Notifier struct {
	SuccessURL string
	ErrorURL   string
}

func (n *Notifier) NotifySuccess(message string) error {
	if n == nil || n.SuccessURL == "" {
		return nil
	}
	return post(n.SuccessURL, webhookEmbed{
		Title:       "Stats saved",
		Description: message,
		Color:       65280,
	})
}

func (n *Notifier) NotifyError(message string) error {
	if n == nil || n.ErrorURL == "" {
		return nil
	}
	return post(n.ErrorURL, webhookEmbed{
		Title:       "Save failed",
		Description: message,
		Color:       16711680,
	})
}

func post(url string, embed webhookEmbed) error {
	payload, err := json.Marshal(webhookMessage{Embeds: []webhookEmbed{embed}})
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send webhook notification, status code: %d", resp.StatusCode)
	}
	return nil
}

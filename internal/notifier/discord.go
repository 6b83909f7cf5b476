package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const discordTimeout = 10 * time.Second

// DiscordNotifier posts payloads as embeds to a Discord webhook
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
}

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title  string         `json:"title"`
	URL    string         `json:"url,omitempty"`
	Image  *discordImage  `json:"image,omitempty"`
	Fields []discordField `json:"fields"`
}

type discordImage struct {
	URL string `json:"url"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// NewDiscordNotifier creates a Discord webhook notifier. A nil httpClient
// uses a client with a 10 second timeout.
func NewDiscordNotifier(webhookURL string, httpClient *http.Client) (*DiscordNotifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("discord webhook URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: discordTimeout}
	}
	return &DiscordNotifier{webhookURL: webhookURL, httpClient: httpClient}, nil
}

// Post sends the payload as a single embed
func (n *DiscordNotifier) Post(ctx context.Context, p *Payload) error {
	body, err := json.Marshal(discordMessage{Embeds: []discordEmbed{toEmbed(p)}})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord webhook error (status %d): %s", resp.StatusCode, string(msg))
	}
	return nil
}

func toEmbed(p *Payload) discordEmbed {
	embed := discordEmbed{
		Title:  p.Title,
		Fields: make([]discordField, 0, len(p.Fields)),
	}
	if p.URL != nil {
		embed.URL = *p.URL
	}
	if p.ImageURL != nil {
		embed.Image = &discordImage{URL: *p.ImageURL}
	}
	for _, f := range p.Fields {
		embed.Fields = append(embed.Fields, discordField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return embed
}

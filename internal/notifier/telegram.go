package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"OptionPulse/internal/access"
)

// TelegramPublisher sends formatted signal messages to one chat via the
// Telegram Bot API. A premium chat gets full views, a free chat gets
// redacted ones.
type TelegramPublisher struct {
	botToken   string
	chatID     string
	tier       access.Tier
	maxRetries int
	client     *http.Client
	log        zerolog.Logger
}

// NewTelegramPublisher creates a publisher with optional proxy support.
func NewTelegramPublisher(botToken, chatID string, tier access.Tier, proxyURL string, log zerolog.Logger) *TelegramPublisher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramPublisher{
		botToken:   botToken,
		chatID:     chatID,
		tier:       tier,
		maxRetries: 3,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		log: log.With().Str("component", "telegram").Str("tier", string(tier)).Logger(),
	}
}

func (t *TelegramPublisher) Name() string      { return "telegram:" + string(t.tier) }
func (t *TelegramPublisher) Tier() access.Tier { return t.tier }

// Publish formats and sends the view with exponential backoff retry.
func (t *TelegramPublisher) Publish(ctx context.Context, view access.SignalView) error {
	return t.sendWithRetry(ctx, FormatSignalMessage(view))
}

// SendText sends a plain message outside the signal flow (daily summaries).
func (t *TelegramPublisher) SendText(ctx context.Context, text string) error {
	return t.sendWithRetry(ctx, text)
}

func (t *TelegramPublisher) sendWithRetry(ctx context.Context, text string) error {
	var lastErr error
	for i := 0; i <= t.maxRetries; i++ {
		if err := t.send(text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			t.log.Warn().Err(err).Int("attempt", i+1).Dur("backoff", backoff).Msg("telegram send failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", t.maxRetries+1, lastErr)
}

func (t *TelegramPublisher) send(text string) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	payload := map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := t.client.Post(apiURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

package telegram

import (
	"calmbot/app/config"
	"calmbot/app/service/delivery"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/do"

	"log/slog"
)

type Client struct {
	cfg *config.Config
	api *tgbotapi.BotAPI
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.Token, tgbotapi.APIEndpoint, &http.Client{
		Timeout: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	slog.Info("Authorized on telegram", "username", api.Self.UserName)

	return &Client{
		cfg: cfg,
		api: api,
	}, nil
}

func (c *Client) SendText(chatID int64, text string) error {
	return c.send(tgbotapi.NewMessage(chatID, text))
}

func (c *Client) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard

	return c.send(msg)
}

func (c *Client) send(msg tgbotapi.Chattable) error {
	_, err := c.api.Send(msg)

	return classify(err)
}

// AnswerCallback acknowledges a callback query so the client stops showing a
// spinner. Failures are not worth retrying.
func (c *Client) AnswerCallback(callbackID string) {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		slog.Warn("Failed to answer callback query", "error", err)
	}
}

func (c *Client) SetWebhook() error {
	url := fmt.Sprintf("https://%s/webhook", c.cfg.Telegram.WebhookHost)

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}

	if _, err = c.api.Request(wh); err != nil {
		return fmt.Errorf("failed to register webhook: %w", err)
	}

	slog.Info("Webhook registered", "url", url)

	return nil
}

// classify maps transport failures onto the retrier's taxonomy: rate limits
// carry the exact server-specified wait, network timeouts are transient,
// everything else is terminal.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return &delivery.RateLimitError{
			RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
			Err:        err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &delivery.TimeoutError{Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &delivery.TimeoutError{Err: err}
	}

	return err
}

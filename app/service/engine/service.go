package engine

import (
	"calmbot/app/client/telegram"
	"calmbot/app/config"
	"calmbot/app/service/conversation"
	"calmbot/app/service/delivery"
	"calmbot/app/service/queue"
	"calmbot/app/storage/moodlog"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const (
	greetingMessage = "Hi! I'm CalmBot, your emotional support companion. Share how you feel, pick an emotion below, or use /chat to talk freely!"
	chatMessage     = "Let's chat! I'm here to listen and support you. What's on your mind?"
	postMoodMessage = "Great, let's dive deeper! What's on your mind about how you're feeling?"
	newMoodMessage  = "No worries! How are you feeling now?"

	// The only failure texts a user ever sees. Raw error detail stays in the
	// logs.
	apologyMessage      = "Sorry, I'm having trouble connecting. Please try again later."
	genericErrorMessage = "An error occurred. Please try again."
)

var moodButtons = []string{"happiness", "sadness", "anger", "anxiety"}

var moodKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("😊 Happy", "happiness"),
		tgbotapi.NewInlineKeyboardButtonData("😢 Sad", "sadness"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("😡 Angry", "anger"),
		tgbotapi.NewInlineKeyboardButtonData("😟 Anxious", "anxiety"),
	),
)

var postMoodKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Chat with CalmBot", "chat_after_mood"),
		tgbotapi.NewInlineKeyboardButtonData("Change Response", "change_response"),
	),
)

type Service struct {
	cfg      *config.Config
	appCtx   context.Context
	tgClient *telegram.Client
	convSvc  *conversation.Service
	queueSvc *queue.Service
	moodLog  *moodlog.Store
	retrier  *delivery.Retrier
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:      do.MustInvoke[*config.Config](di),
		appCtx:   do.MustInvoke[context.Context](di),
		tgClient: do.MustInvoke[*telegram.Client](di),
		convSvc:  do.MustInvoke[*conversation.Service](di),
		queueSvc: do.MustInvoke[*queue.Service](di),
		moodLog:  do.MustInvoke[*moodlog.Store](di),
		retrier:  delivery.New(),
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	// Degraded registration is survivable: the transport can still be probed
	// via /test_webhook.
	if err := s.tgClient.SetWebhook(); err != nil {
		slog.Error("Failed to register webhook", "error", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("CalmBot is running! Use Telegram to interact with the bot.")
	})

	app.Get("/test_webhook", func(c *fiber.Ctx) error {
		url := fmt.Sprintf("https://%s/webhook", s.cfg.Telegram.WebhookHost)
		return c.SendString(fmt.Sprintf("Webhook URL: %s. Check logs and Telegram getWebhookInfo.", url))
	})

	app.Post("/webhook", s.handleWebhook)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Listen(":" + s.cfg.Telegram.Port)
	})

	g.Go(func() error {
		<-gctx.Done()
		return app.ShutdownWithTimeout(5 * time.Second)
	})

	slog.Info("Webhook server started", "port", s.cfg.Telegram.Port)

	return g.Wait()
}

func (s *Service) handleWebhook(c *fiber.Ctx) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		slog.Warn("Failed to decode webhook update", "error", err)
		return c.SendStatus(fiber.StatusBadRequest)
	}

	s.route(&update)

	return c.SendStatus(fiber.StatusOK)
}

func (s *Service) route(update *tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		s.routeCallback(update.CallbackQuery)

	case update.Message != nil && update.Message.From != nil && update.Message.IsCommand():
		s.routeCommand(update.Message)

	case update.Message != nil && update.Message.From != nil && update.Message.Text != "":
		msg := update.Message
		userID, chatID, text := msg.From.ID, msg.Chat.ID, msg.Text

		s.queueSvc.Dispatch(userID, func() {
			start := time.Now()
			reply := s.convSvc.HandleText(s.appCtx, userID, text)
			s.deliver(chatID, reply, nil)

			slog.Info("Processed message",
				"user_id", userID,
				"duration", time.Since(start))
		})
	}
}

func (s *Service) routeCommand(msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		s.queueSvc.Dispatch(userID, func() {
			s.convSvc.StartSession(userID)
			s.deliver(chatID, greetingMessage, &moodKeyboard)
		})

	case "chat":
		s.queueSvc.Dispatch(userID, func() {
			s.convSvc.EnterChat(userID)
			s.deliver(chatID, chatMessage, nil)
		})

	case "moods":
		s.queueSvc.Dispatch(userID, func() {
			s.deliver(chatID, s.formatRecentMoods(userID), nil)
		})

	default:
		slog.Debug("Ignoring unknown command", "command", msg.Command())
	}
}

func (s *Service) routeCallback(query *tgbotapi.CallbackQuery) {
	s.tgClient.AnswerCallback(query.ID)

	if query.Message == nil {
		return
	}

	userID, chatID, data := query.From.ID, query.Message.Chat.ID, query.Data

	switch {
	case pie.Contains(moodButtons, data):
		s.queueSvc.Dispatch(userID, func() {
			reply := s.convSvc.HandleMood(s.appCtx, userID, data)
			s.deliver(chatID, reply, &postMoodKeyboard)
		})

	case data == "chat_after_mood":
		s.queueSvc.Dispatch(userID, func() {
			s.convSvc.EnterChat(userID)
			s.deliver(chatID, postMoodMessage, nil)
		})

	case data == "change_response":
		s.queueSvc.Dispatch(userID, func() {
			s.convSvc.ClearFollowup(userID)
			s.deliver(chatID, newMoodMessage, &moodKeyboard)
		})
	}
}

// deliver sends the reply through the retrier. Exhausted timeouts surface as
// the fixed apology, anything else terminal as the generic error line; both
// follow-up sends are single best-effort attempts.
func (s *Service) deliver(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	res := s.retrier.Deliver(s.appCtx, func() error {
		if keyboard != nil {
			return s.tgClient.SendWithKeyboard(chatID, text, *keyboard)
		}
		return s.tgClient.SendText(chatID, text)
	})
	if res.Delivered {
		return
	}

	var timeoutErr *delivery.TimeoutError
	if errors.As(res.Cause, &timeoutErr) {
		slog.Error("Max retries reached for timeout",
			"chat_id", chatID,
			"attempts", res.Attempts,
			"error", res.Cause)

		if err := s.tgClient.SendText(chatID, apologyMessage); err != nil {
			slog.Error("Failed to send apology", "chat_id", chatID, "error", err)
		}
		return
	}

	slog.Error("Delivery failed",
		"chat_id", chatID,
		"attempts", res.Attempts,
		"error", res.Cause)

	if err := s.tgClient.SendText(chatID, genericErrorMessage); err != nil {
		slog.Error("Failed to send error message", "chat_id", chatID, "error", err)
	}
}

func (s *Service) formatRecentMoods(userID int64) string {
	turns, err := s.moodLog.RecentByUser(userID, 5)
	if err != nil {
		slog.Error("Failed to query mood history", "user_id", userID, "error", err)
		return genericErrorMessage
	}

	if len(turns) == 0 {
		return "No moods logged yet. Share how you feel or pick an emotion with /start!"
	}

	var builder strings.Builder
	builder.WriteString("Your recent moods:\n")
	for _, turn := range turns {
		builder.WriteString(fmt.Sprintf("%s: %s\n", turn.Timestamp, turn.Mood))
	}

	return builder.String()
}

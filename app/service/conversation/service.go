package conversation

import (
	"calmbot/app/catalog"
	"calmbot/app/config"
	"calmbot/app/storage/moodlog"
	"calmbot/app/storage/unknown"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/do"
)

// MoodSink receives one mood-tagged record per resolved turn.
type MoodSink interface {
	Append(userID int64, mood, message string) error
}

// Service orchestrates one conversation turn: resolve the reply, log the
// mood, and fold the turn into the user's rolling state. Delivery is the
// engine's job.
type Service struct {
	sessions Store
	resolver *Resolver
	moodLog  MoodSink
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	unknownLog := do.MustInvoke[*unknown.Log](di)
	moodStore := do.MustInvoke[*moodlog.Store](di)

	cat := catalog.Load(cfg.Catalog.Path)
	resolver := NewResolver(cat, unknownLog, NewReplyAgent(cfg.Backend))

	var sessions Store = NewSessions()
	if cfg.DB.SessionsPath != "" {
		persisted, err := OpenFileSessions(cfg.DB.SessionsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		sessions = persisted
	}

	return newService(sessions, resolver, moodStore), nil
}

func newService(sessions Store, resolver *Resolver, moodLog MoodSink) *Service {
	return &Service{
		sessions: sessions,
		resolver: resolver,
		moodLog:  moodLog,
	}
}

// HandleText processes one free-text message and returns the reply to send.
// The caller must not dispatch another message for the same user until this
// returns; across users, turns run in parallel.
func (s *Service) HandleText(ctx context.Context, userID int64, text string) string {
	state := s.sessions.Get(userID)

	reply, state := s.resolver.Resolve(ctx, userID, text, state)

	s.logMood(userID, strings.ToLower(text), text)

	if state.ChatMode {
		state.History = appendTurn(state.History, text, reply)
	} else {
		state.History = seedTurn(text, reply)
	}
	state.PrevResponse = reply

	s.sessions.Put(userID, state)

	return reply
}

// HandleMood processes a mood-button selection and returns the canned reply.
func (s *Service) HandleMood(_ context.Context, userID int64, mood string) string {
	s.logMood(userID, mood, "Button selection")

	reply := catalog.MoodReply(mood)

	state := s.sessions.Get(userID)
	state.AwaitingFollowup = false
	state.PrevResponse = reply
	state.History = seedMoodTurn(mood, reply)
	s.sessions.Put(userID, state)

	return reply
}

// StartSession resets the user's state to a fresh session.
func (s *Service) StartSession(userID int64) {
	s.sessions.Reset(userID)
}

// EnterChat opts the user into free-form conversation.
func (s *Service) EnterChat(userID int64) {
	state := s.sessions.Get(userID)
	state.ChatMode = true
	state.AwaitingFollowup = false
	s.sessions.Put(userID, state)
}

// ClearFollowup drops a pending clarifying question, e.g. when the user asks
// for the mood keyboard again.
func (s *Service) ClearFollowup(userID int64) {
	state := s.sessions.Get(userID)
	state.AwaitingFollowup = false
	s.sessions.Put(userID, state)
}

// logMood is best-effort: log appends are independent of reply delivery.
func (s *Service) logMood(userID int64, mood, message string) {
	if err := s.moodLog.Append(userID, mood, message); err != nil {
		slog.Error("Failed to log mood turn", "user_id", userID, "error", err)
	}
}

package conversation

import (
	"calmbot/app/catalog"
	"calmbot/app/storage/unknown"
	"context"
	"log/slog"
	"time"
)

// affirmationToken continues the previous reply when a clarifying question
// was just asked.
const affirmationToken = "yes"

// UnknownSink receives inputs that missed the catalog.
type UnknownSink interface {
	Append(rec unknown.Record) error
}

// Generator produces a free-form reply for an unmatched input. It must not
// fail: a backend outage degrades reply quality, never turn handling.
type Generator interface {
	Generate(ctx context.Context, message, prevResponse, history string) string
}

// Resolver is the response-resolution state machine. Resolve is pure with
// respect to state: it takes the current State in and returns the updated
// one, so turns are deterministic under test.
type Resolver struct {
	catalog *catalog.Catalog
	sink    UnknownSink
	gen     Generator
	now     func() time.Time
}

func NewResolver(cat *catalog.Catalog, sink UnknownSink, gen Generator) *Resolver {
	return &Resolver{
		catalog: cat,
		sink:    sink,
		gen:     gen,
		now:     time.Now,
	}
}

// Resolve classifies one inbound message. Each branch is terminal:
//
//  1. catalog hit → canned reply
//  2. affirmation with a previous reply → generative continuation
//  3. answer to a pending follow-up → generative, recorded as follow-up
//  4. first unmatched input → generative, follow-up question now pending
func (r *Resolver) Resolve(ctx context.Context, userID int64, text string, state State) (string, State) {
	normalized := catalog.Normalize(text)

	if reply, ok := r.catalog.Lookup(normalized); ok {
		state.AwaitingFollowup = false
		return reply, state
	}

	if normalized == affirmationToken && state.PrevResponse != "" {
		state.AwaitingFollowup = false
		return r.gen.Generate(ctx, text, state.PrevResponse, state.History), state
	}

	if state.AwaitingFollowup {
		r.recordUnknown(userID, text, true)
		state.AwaitingFollowup = false
		return r.gen.Generate(ctx, text, state.PrevResponse, state.History), state
	}

	r.recordUnknown(userID, text, false)
	state.AwaitingFollowup = true
	return r.gen.Generate(ctx, text, state.PrevResponse, state.History), state
}

// recordUnknown is best-effort: a sink failure must not fail the turn.
func (r *Resolver) recordUnknown(userID int64, text string, isFollowup bool) {
	err := r.sink.Append(unknown.Record{
		UserID:     userID,
		Timestamp:  r.now().UTC(),
		Input:      text,
		IsFollowup: isFollowup,
	})
	if err != nil {
		slog.Error("Failed to record unknown input",
			"user_id", userID,
			"is_followup", isFollowup,
			"error", err,
		)
	}
}

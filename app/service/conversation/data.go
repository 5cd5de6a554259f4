package conversation

// State is the per-user conversation state. A zero State is a fresh session.
type State struct {
	// AwaitingFollowup is true iff the previous turn asked a clarifying
	// question that has not been answered yet.
	AwaitingFollowup bool
	// ChatMode is set once the user opts into free-form conversation.
	ChatMode bool
	// History is the rolling "User: … | Bot: …" context window, bounded to
	// the last 300 characters.
	History string
	// PrevResponse is the bot's last reply, empty before the first turn.
	PrevResponse string
}

// Store holds per-user state. Implementations must be safe for concurrent
// use across users; turns for one user are serialized by the dispatch queue.
type Store interface {
	Get(userID int64) State
	Put(userID int64, state State)
	Reset(userID int64)
}

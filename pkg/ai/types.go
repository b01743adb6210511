package ai

import "context"

// Chat roles understood by the completion service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prompt turn sent to the completion service.
type Message struct {
	Role    string
	Content string
}

// ReplyStream is an open token stream for one assistant reply. Recv returns
// io.EOF after the final token; Close releases the upstream connection and
// is safe to call more than once.
type ReplyStream interface {
	Recv() (string, error)
	Close() error
}

// Interviewer describes a hosted chat-completion model used for both the
// streamed interview dialogue and the one-shot structured evaluation.
type Interviewer interface {
	// StreamReply opens a token stream for the next assistant reply.
	// Connection and authentication failures surface here, before any
	// token is produced, so callers can still fail the request cleanly.
	StreamReply(ctx context.Context, messages []Message) (ReplyStream, error)

	// CompleteJSON issues a single non-streaming call in JSON-object mode
	// and returns the raw response text.
	CompleteJSON(ctx context.Context, prompt string, maxTokens int) (string, error)
}

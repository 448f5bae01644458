package completion

import (
	"context"

	"github.com/janhq/mistralhub/internal/domain/conversation"
)

// PartType distinguishes the pieces of a multimodal user message.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image_url"
)

// Part is one piece of a multimodal message. ImageURL carries a data URL.
type Part struct {
	Type     PartType
	Text     string
	ImageURL string
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

// ImagePart builds an inline data URL part from a base64 payload.
func ImagePart(mimeType, base64Payload string) Part {
	return Part{Type: PartImage, ImageURL: "data:" + mimeType + ";base64," + base64Payload}
}

// CompletionRequest is a single-shot upstream call: an optional system
// prompt followed by one user message made of parts.
type CompletionRequest struct {
	Model  string
	System string
	Parts  []Part
}

// FragmentStream yields incremental text deltas. Recv returns io.EOF after
// the last fragment. Close releases the upstream connection and is safe to
// call more than once.
type FragmentStream interface {
	Recv() (string, error)
	Close() error
}

// Provider is the upstream language-model API.
type Provider interface {
	StreamChat(ctx context.Context, modelID string, messages []conversation.ChatTurn) (FragmentStream, error)
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

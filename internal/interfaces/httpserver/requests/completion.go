package requests

import (
	"github.com/janhq/mistralhub/internal/domain/completion"
	"github.com/janhq/mistralhub/internal/domain/conversation"
)

// ChatMessage is one prior turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content" example:"Hi"`
}

// ChatRequest is the /chat body.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model" example:"mistral-small-latest"`
}

func (r ChatRequest) ToDomain() completion.ChatRequest {
	turns := make([]conversation.ChatTurn, 0, len(r.Messages))
	for _, m := range r.Messages {
		turns = append(turns, conversation.ChatTurn{Role: m.Role, Content: m.Content})
	}
	return completion.ChatRequest{Messages: turns, Model: r.Model}
}

// VisionRequest is the /vision body. Image is base64 without a data URL prefix.
type VisionRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt,omitempty" example:"What is in this picture?"`
	Model  string `json:"model,omitempty" example:"pixtral-large-latest"`
}

func (r VisionRequest) ToDomain() completion.VisionRequest {
	return completion.VisionRequest{Image: r.Image, Prompt: r.Prompt, Model: r.Model}
}

// DocumentRequest is the /document body. Document is base64 without a data URL prefix.
type DocumentRequest struct {
	Document string `json:"document"`
	Prompt   string `json:"prompt,omitempty" example:"Summarize this document"`
	Model    string `json:"model,omitempty" example:"mistral-large-latest"`
}

func (r DocumentRequest) ToDomain() completion.DocumentRequest {
	return completion.DocumentRequest{Document: r.Document, Prompt: r.Prompt, Model: r.Model}
}

package conversation

import (
	"time"

	"github.com/janhq/mistralhub/internal/domain/model"
	"github.com/janhq/mistralhub/internal/utils/idgen"
	"github.com/janhq/mistralhub/internal/utils/stringutils"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AttachmentType classifies an uploaded file.
type AttachmentType string

const (
	AttachmentImage    AttachmentType = "image"
	AttachmentDocument AttachmentType = "document"
)

// Attachment is a file attached to a user message. URL is a process-local
// handle and is never meaningful after a restart.
type Attachment struct {
	ID       string         `json:"id"`
	Type     AttachmentType `json:"type"`
	Name     string         `json:"name"`
	URL      string         `json:"url"`
	MimeType string         `json:"mimeType"`
	Base64   string         `json:"base64,omitempty"`
}

// Message is a single chat turn.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   int64        `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	IsStreaming bool         `json:"isStreaming,omitempty"`
}

// Conversation is an ordered list of messages bound to a model.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Model     model.ID  `json:"model"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
}

var now = time.Now

// NowMillis returns the current time as Unix milliseconds.
func NowMillis() int64 {
	return now().UnixMilli()
}

// New creates an empty conversation titled "New Chat".
func New(modelID model.ID) Conversation {
	ts := NowMillis()
	return Conversation{
		ID:        idgen.New(),
		Title:     stringutils.DefaultTitle,
		Messages:  []Message{},
		Model:     modelID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// NewUserMessage builds a user message; empty attachments are dropped.
func NewUserMessage(content string, attachments []Attachment) Message {
	msg := Message{
		ID:        idgen.New(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: NowMillis(),
	}
	if len(attachments) > 0 {
		msg.Attachments = append([]Attachment(nil), attachments...)
	}
	return msg
}

// NewAssistantPlaceholder builds the in-flight assistant reply.
func NewAssistantPlaceholder() Message {
	return Message{
		ID:          idgen.New(),
		Role:        RoleAssistant,
		Timestamp:   NowMillis(),
		IsStreaming: true,
	}
}

// Touch refreshes UpdatedAt; every mutation calls it.
func (c *Conversation) Touch() {
	c.UpdatedAt = NowMillis()
}

// Append adds messages in order. The title is derived from the first user
// message when the conversation had no messages yet.
func (c *Conversation) Append(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	if len(c.Messages) == 0 {
		for _, m := range msgs {
			if m.Role == RoleUser {
				if title := stringutils.GenerateTitle(m.Content); title != "" {
					c.Title = title
				}
				break
			}
		}
	}
	c.Messages = append(c.Messages, msgs...)
	c.Touch()
}

// UpdateMessage applies fn to the message with id. It reports whether the message exists.
func (c *Conversation) UpdateMessage(id string, fn func(*Message)) bool {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			fn(&c.Messages[i])
			c.Touch()
			return true
		}
	}
	return false
}

// FindMessage returns a copy of the message with id.
func (c *Conversation) FindMessage(id string) (Message, bool) {
	for _, m := range c.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// SetModel switches the model used for subsequent turns.
func (c *Conversation) SetModel(id model.ID) {
	c.Model = id
	c.Touch()
}

// History returns role/content pairs for every message except skipID.
func (c *Conversation) History(skipID string) []ChatTurn {
	turns := make([]ChatTurn, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.ID == skipID {
			continue
		}
		turns = append(turns, ChatTurn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}

// Clone returns a deep copy so transient UI state never aliases stored state.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		if m.Attachments != nil {
			m.Attachments = append([]Attachment(nil), m.Attachments...)
		}
		out.Messages[i] = m
	}
	return out
}

// ChatTurn is the role/content pair sent to the relay.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

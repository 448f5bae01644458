package chatclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/janhq/mistralhub/internal/chatclient/store"
	"github.com/janhq/mistralhub/internal/chatclient/upload"
	"github.com/janhq/mistralhub/internal/domain/conversation"
	"github.com/janhq/mistralhub/internal/domain/model"
	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

const defaultImagePrompt = "Describe this image in detail."

// ErrBusy is returned by Send while a reply is still in flight.
var ErrBusy = errors.New("a reply is already in progress")

// UpdateFunc receives the assistant message every time it changes.
type UpdateFunc func(msg conversation.Message)

// Session is the client side of one user: the selected model, the current
// conversation and the in-flight flag. Every mutation is written through to
// the store before the next interaction is accepted.
type Session struct {
	relay   Relay
	store   *store.Store
	uploads *upload.Registry
	log     zerolog.Logger

	mu      sync.Mutex
	model   model.ID
	current *conversation.Conversation
	loading bool
	// replyTarget is the conversation the in-flight reply lands in;
	// replyDropped is set when it was deleted meanwhile.
	replyTarget  string
	replyDropped bool
}

func NewSession(relay Relay, st *store.Store, uploads *upload.Registry, defaultModel model.ID, log zerolog.Logger) *Session {
	if !model.Known(defaultModel) {
		defaultModel = model.DefaultChatModel
	}
	return &Session{
		relay:   relay,
		store:   st,
		uploads: uploads,
		log:     log.With().Str("component", "chat-session").Logger(),
		model:   defaultModel,
	}
}

// Restore reopens the conversation the current pointer references.
func (s *Session) Restore(ctx context.Context) bool {
	id, ok := s.store.CurrentID(ctx)
	if !ok {
		return false
	}
	c, ok := s.store.Get(ctx, id)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &c
	if model.Known(c.Model) {
		s.model = c.Model
	}
	return true
}

// Model returns the selected model.
func (s *Session) Model() model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Loading reports whether a reply is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Current returns a copy of the current conversation.
func (s *Session) Current() (conversation.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return conversation.Conversation{}, false
	}
	return s.current.Clone(), true
}

// Conversations lists stored conversations.
func (s *Session) Conversations(ctx context.Context) []conversation.Conversation {
	return s.store.List(ctx)
}

// NewConversation starts an empty conversation with the selected model and makes it current.
func (s *Session) NewConversation(ctx context.Context) conversation.Conversation {
	s.mu.Lock()
	c := conversation.New(s.model)
	s.current = &c
	s.mu.Unlock()

	s.store.SetCurrentID(ctx, c.ID)
	s.store.Save(ctx, c)
	return c.Clone()
}

// Select makes the stored conversation id current and adopts its model.
func (s *Session) Select(ctx context.Context, id string) (conversation.Conversation, error) {
	c, ok := s.store.Get(ctx, id)
	if !ok {
		return conversation.Conversation{}, platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation %s not found", id), nil, "2d5a8f1c-7e34-4b90-a6d2-9c1e5f8b3a07")
	}

	s.mu.Lock()
	s.current = &c
	if model.Known(c.Model) {
		s.model = c.Model
	}
	s.mu.Unlock()

	s.store.SetCurrentID(ctx, id)
	return c.Clone(), nil
}

// Delete removes a conversation and releases its attachment handles.
func (s *Session) Delete(ctx context.Context, id string) {
	if c, ok := s.store.Get(ctx, id); ok {
		s.releaseAttachments(c)
	}
	s.store.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading && s.replyTarget == id {
		s.replyDropped = true
	}
	if s.current != nil && s.current.ID == id {
		s.releaseAttachments(*s.current)
		s.current = nil
	}
}

// ChangeModel selects a model and persists it on the current conversation.
func (s *Session) ChangeModel(ctx context.Context, id model.ID) error {
	if !model.Known(id) {
		return platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("Unknown model: %s", id), nil, "8b3f0e6d-1a29-4c57-b4e8-2f7d9a6c0e15")
	}

	s.mu.Lock()
	s.model = id
	var snapshot *conversation.Conversation
	if s.current != nil {
		s.current.SetModel(id)
		c := s.current.Clone()
		snapshot = &c
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.store.Save(ctx, *snapshot)
	}
	return nil
}

// Send appends the user turn and an assistant placeholder, then fills the
// placeholder from the relay. The placeholder always ends with
// IsStreaming=false, holding either the reply or an "Error: ..." line.
func (s *Session) Send(ctx context.Context, content string, attachments []conversation.Attachment, onUpdate UpdateFunc) (conversation.Message, error) {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return conversation.Message{}, platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeValidation,
			"message is empty", nil, "5c9e2a7f-3d18-4b64-8f0a-e1b7c4d2a936")
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return conversation.Message{}, ErrBusy
	}
	s.loading = true
	if s.current == nil {
		c := conversation.New(s.model)
		s.current = &c
	}
	// The reply lands in this conversation even if another one is selected meanwhile.
	target := s.current
	s.replyTarget = target.ID
	s.replyDropped = false
	modelID := s.model
	placeholder := conversation.NewAssistantPlaceholder()
	target.Append(conversation.NewUserMessage(content, attachments), placeholder)
	history := target.History(placeholder.ID)
	snapshot := target.Clone()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.replyTarget = ""
		s.replyDropped = false
		s.mu.Unlock()
	}()

	s.store.SetCurrentID(ctx, snapshot.ID)
	s.persist(ctx, target)
	notify(onUpdate, placeholder)

	reply, err := s.fetchReply(ctx, modelID, content, attachments, history, func(text string) {
		msg, ok := s.updatePlaceholder(target, placeholder.ID, func(m *conversation.Message) { m.Content = text })
		if ok {
			notify(onUpdate, msg)
		}
	})

	final, _ := s.updatePlaceholder(target, placeholder.ID, func(m *conversation.Message) {
		m.IsStreaming = false
		if err != nil {
			m.Content = errorContent(reply, err)
			return
		}
		m.Content = reply
	})
	if err != nil {
		platformerrors.LogError(s.log.With().Str("conversation_id", snapshot.ID).Logger(), err)
	}

	s.persist(ctx, target)
	notify(onUpdate, final)
	return final, err
}

func (s *Session) fetchReply(ctx context.Context, modelID model.ID, content string, attachments []conversation.Attachment, history []conversation.ChatTurn, progress func(text string)) (string, error) {
	if image, ok := firstAttachment(attachments, conversation.AttachmentImage); ok {
		prompt := content
		if prompt == "" {
			prompt = defaultImagePrompt
		}
		return s.relay.Vision(ctx, VisionRequest{
			Image:  image.Base64,
			Prompt: prompt,
			Model:  model.VisionModelFor(modelID),
		})
	}

	if doc, ok := firstAttachment(attachments, conversation.AttachmentDocument); ok {
		resp, err := s.relay.Document(ctx, DocumentRequest{
			Document: doc.Base64,
			Prompt:   content,
			Model:    modelID,
		})
		if err != nil {
			return "", err
		}
		if resp.Answer != nil && *resp.Answer != "" {
			return *resp.Answer, nil
		}
		return resp.ExtractedText, nil
	}

	return s.relay.Chat(ctx, modelID, history, func(_, text string) { progress(text) })
}

func (s *Session) updatePlaceholder(c *conversation.Conversation, id string, fn func(*conversation.Message)) (conversation.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !c.UpdateMessage(id, fn) {
		return conversation.Message{}, false
	}
	return c.FindMessage(id)
}

// persist saves c unless it was deleted while its reply was in flight.
func (s *Session) persist(ctx context.Context, c *conversation.Conversation) {
	s.mu.Lock()
	if s.replyDropped && s.replyTarget == c.ID {
		s.mu.Unlock()
		s.log.Debug().Str("conversation_id", c.ID).Msg("conversation deleted during reply, not saving")
		return
	}
	snapshot := c.Clone()
	s.mu.Unlock()
	s.store.Save(ctx, snapshot)
}

func (s *Session) releaseAttachments(c conversation.Conversation) {
	if s.uploads == nil {
		return
	}
	for _, m := range c.Messages {
		for _, a := range m.Attachments {
			s.uploads.Release(a.URL)
		}
	}
}

// firstAttachment returns the first attachment of kind that carries a payload.
func firstAttachment(attachments []conversation.Attachment, kind conversation.AttachmentType) (conversation.Attachment, bool) {
	for _, a := range attachments {
		if a.Type == kind && a.Base64 != "" {
			return a, true
		}
	}
	return conversation.Attachment{}, false
}

// errorContent keeps any partial reply and appends the error line.
func errorContent(partial string, err error) string {
	line := "Error: " + errorMessage(err)
	if partial == "" {
		return line
	}
	return partial + "\n\n" + line
}

func errorMessage(err error) string {
	var streamErr *StreamError
	var apiErr *APIError
	switch {
	case errors.As(err, &streamErr):
		return streamErr.Message
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrCorruptStream):
		return "the reply stream could not be read"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	if msg := platformerrors.Message(err); msg != "" {
		return msg
	}
	return "Something went wrong"
}

func notify(fn UpdateFunc, msg conversation.Message) {
	if fn != nil {
		fn(msg)
	}
}

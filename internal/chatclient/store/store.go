// Package store keeps conversation history in a local key-value medium.
// Persistence is best effort: a missing or broken medium reads as empty and
// swallows writes.
package store

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/janhq/mistralhub/internal/domain/conversation"
	"github.com/janhq/mistralhub/internal/infrastructure/kvstore"
)

const (
	ConversationsKey       = "mistralhub_conversations"
	CurrentConversationKey = "mistralhub_current_conversation"
)

// Store is the sole durable owner of conversations.
type Store struct {
	kv  kvstore.KV
	log zerolog.Logger
}

func New(kv kvstore.KV, log zerolog.Logger) *Store {
	return &Store{
		kv:  kv,
		log: log.With().Str("component", "conversation-store").Logger(),
	}
}

// List returns every stored conversation in storage order.
func (s *Store) List(ctx context.Context) []conversation.Conversation {
	raw, ok, err := s.kv.Get(ctx, ConversationsKey)
	if err != nil {
		s.log.Debug().Err(err).Msg("read conversations")
		return []conversation.Conversation{}
	}
	if !ok || raw == "" {
		return []conversation.Conversation{}
	}

	var conversations []conversation.Conversation
	if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
		s.log.Warn().Err(err).Msg("stored conversations are unreadable, ignoring them")
		return []conversation.Conversation{}
	}
	if conversations == nil {
		conversations = []conversation.Conversation{}
	}
	return conversations
}

// Get returns the conversation with id.
func (s *Store) Get(ctx context.Context, id string) (conversation.Conversation, bool) {
	for _, c := range s.List(ctx) {
		if c.ID == id {
			return c, true
		}
	}
	return conversation.Conversation{}, false
}

// Save replaces the conversation with the same id, or prepends it when new.
func (s *Store) Save(ctx context.Context, c conversation.Conversation) {
	conversations := s.List(ctx)
	replaced := false
	for i := range conversations {
		if conversations[i].ID == c.ID {
			conversations[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		conversations = append([]conversation.Conversation{c}, conversations...)
	}
	s.write(ctx, conversations)
}

// Delete removes the conversation and clears the current pointer when it referenced id.
func (s *Store) Delete(ctx context.Context, id string) {
	conversations := s.List(ctx)
	kept := conversations[:0]
	for _, c := range conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.write(ctx, kept)

	if current, ok := s.CurrentID(ctx); ok && current == id {
		s.SetCurrentID(ctx, "")
	}
}

// CurrentID returns the current conversation pointer.
func (s *Store) CurrentID(ctx context.Context) (string, bool) {
	id, ok, err := s.kv.Get(ctx, CurrentConversationKey)
	if err != nil {
		s.log.Debug().Err(err).Msg("read current conversation")
		return "", false
	}
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SetCurrentID moves the current pointer; an empty id clears it.
func (s *Store) SetCurrentID(ctx context.Context, id string) {
	var err error
	if id == "" {
		err = s.kv.Delete(ctx, CurrentConversationKey)
	} else {
		err = s.kv.Set(ctx, CurrentConversationKey, id)
	}
	if err != nil {
		s.log.Debug().Err(err).Str("conversation_id", id).Msg("write current conversation")
	}
}

func (s *Store) write(ctx context.Context, conversations []conversation.Conversation) {
	payload, err := json.Marshal(conversations)
	if err != nil {
		s.log.Error().Err(err).Msg("encode conversations")
		return
	}
	if err := s.kv.Set(ctx, ConversationsKey, string(payload)); err != nil {
		s.log.Debug().Err(err).Msg("write conversations")
	}
}

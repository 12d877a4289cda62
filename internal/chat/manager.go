package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/iaisolution/invoice-reimbursement/internal/models"
	"go.uber.org/zap"
)

// contextSnippets is how many retrieved documents back one chat reply
const contextSnippets = 5

// Searcher retrieves context snippets for a query
type Searcher interface {
	Search(query string, maxResults int) []string
}

// ReplyGenerator produces an assistant reply from a query and its context
type ReplyGenerator interface {
	GenerateChatReply(ctx context.Context, query string, contextDocs []string) string
}

// Manager maps conversation identifiers to their turn history and
// orchestrates retrieval plus reply generation for each query. Histories
// grow for the life of the process; there is no expiry.
type Manager struct {
	searcher  Searcher
	generator ReplyGenerator
	logger    *zap.Logger

	mu            sync.Mutex
	conversations map[string][]models.ConversationTurn
}

// NewManager creates a new conversation manager
func NewManager(searcher Searcher, generator ReplyGenerator, logger *zap.Logger) *Manager {
	return &Manager{
		searcher:      searcher,
		generator:     generator,
		logger:        logger,
		conversations: make(map[string][]models.ConversationTurn),
	}
}

// ProcessQuery answers one query in a conversation. A missing conversation
// id gets a fresh one; the id is returned even on failure so the client
// can retry in-session.
func (m *Manager) ProcessQuery(ctx context.Context, request models.ChatRequest) models.ChatResponse {
	conversationID := request.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	response, err := m.respond(ctx, conversationID, request.Query)
	if err != nil {
		m.logger.Error("Chat processing failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return models.ChatResponse{
			Response:       fmt.Sprintf("I apologize, but I encountered an error: %v", err),
			Sources:        []string{},
			ConversationID: conversationID,
			Success:        false,
		}
	}
	return response
}

func (m *Manager) respond(ctx context.Context, conversationID, query string) (response models.ChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	relevantDocs := m.searcher.Search(query, contextSnippets)
	replyText := m.generator.GenerateChatReply(ctx, query, relevantDocs)

	m.appendTurns(conversationID,
		models.ConversationTurn{Role: "user", Text: query},
		models.ConversationTurn{Role: "assistant", Text: replyText},
	)

	sources := make([]string, 0, len(relevantDocs))
	for i := range relevantDocs {
		sources = append(sources, fmt.Sprintf("Document %d", i+1))
	}

	m.logger.Info("Chat query answered",
		zap.String("conversation_id", conversationID),
		zap.Int("context_docs", len(relevantDocs)))

	return models.ChatResponse{
		Response:       replyText,
		Sources:        sources,
		ConversationID: conversationID,
		Success:        true,
	}, nil
}

func (m *Manager) appendTurns(conversationID string, turns ...models.ConversationTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[conversationID] = append(m.conversations[conversationID], turns...)
}

// History returns a copy of the turn history for one conversation
func (m *Manager) History(conversationID string) []models.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.conversations[conversationID]
	out := make([]models.ConversationTurn, len(history))
	copy(out, history)
	return out
}

package clients

import (
	"context"
	"time"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

// SaveSearchResultPayload is what the chat service persists for a session.
type SaveSearchResultPayload struct {
	Summary  string   `json:"summary"`
	ModelIDs []string `json:"modelIds"`
}

// ChatClient talks to the chat persistence collaborator.
type ChatClient struct {
	base
}

// NewChatClient creates a chat service client.
func NewChatClient(baseURL string, timeout time.Duration, logger *observability.Logger) *ChatClient {
	return &ChatClient{base: newBase(baseURL, timeout, logger)}
}

// SaveSearchResult stores a chosen search result under the session.
func (c *ChatClient) SaveSearchResult(ctx context.Context, sessionID string, payload SaveSearchResultPayload) error {
	err := c.doJSON(ctx, "POST", "/api/chat/sessions/"+sessionID+"/results", payload, nil)
	if err != nil {
		return err
	}
	c.logger.Info(ctx, "search result saved", "session_id", sessionID, "summary", payload.Summary)
	return nil
}

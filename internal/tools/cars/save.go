package cars

import (
	"context"
	"encoding/json"

	"github.com/carwise/llm-orchestrator/internal/clients"
	"github.com/carwise/llm-orchestrator/internal/observability"
)

// ResultSaver is the slice of the chat service the save tool needs.
// *clients.ChatClient satisfies it.
type ResultSaver interface {
	SaveSearchResult(ctx context.Context, sessionID string, payload clients.SaveSearchResultPayload) error
}

const saveResultSchema = `{
  "type": "object",
  "properties": {
    "session_id": {
      "type": "string",
      "description": "ID текущей сессии чата"
    },
    "summary": {
      "type": "string",
      "description": "Краткое описание поиска (например: \"Седан до 2 млн с автоматом\")"
    },
    "selected_model_ids": {
      "type": "array",
      "items": {"type": "string"},
      "description": "ID выбранных моделей для сохранения"
    }
  },
  "required": ["session_id", "summary", "selected_model_ids"]
}`

// SaveTool persists the user's final selection via the chat service.
type SaveTool struct {
	chat   ResultSaver
	logger *observability.Logger
}

// NewSaveTool creates the save_search_result tool.
func NewSaveTool(chat ResultSaver, logger *observability.Logger) *SaveTool {
	return &SaveTool{chat: chat, logger: logger}
}

func (t *SaveTool) Name() string { return "save_search_result" }

func (t *SaveTool) Description() string {
	return "Сохранить результат подбора автомобилей для пользователя. Используй после финального выбора."
}

func (t *SaveTool) Schema() json.RawMessage {
	return json.RawMessage(saveResultSchema)
}

type saveResultArgs struct {
	SessionID        string   `json:"session_id"`
	Summary          string   `json:"summary"`
	SelectedModelIDs []string `json:"selected_model_ids"`
}

func (t *SaveTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var parsed saveResultArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return msgSaveError, nil
	}

	t.logger.Info(ctx, "executing save_search_result",
		"session_id", parsed.SessionID,
		"summary", parsed.Summary,
		"model_ids", parsed.SelectedModelIDs)

	err := t.chat.SaveSearchResult(ctx, parsed.SessionID, clients.SaveSearchResultPayload{
		Summary:  parsed.Summary,
		ModelIDs: parsed.SelectedModelIDs,
	})
	if err != nil {
		t.logger.Error(ctx, "save_search_result failed", "error", err)
		return msgSaveError, nil
	}

	return msgResultSaved, nil
}

package cars

import (
	"context"
	"encoding/json"

	"github.com/carwise/llm-orchestrator/internal/clients"
	"github.com/carwise/llm-orchestrator/internal/observability"
)

// ProfileFetcher is the slice of the user service the preferences tool needs.
// *clients.UserClient satisfies it.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, userID string) (*clients.UserProfile, error)
}

const preferencesSchema = `{
  "type": "object",
  "properties": {
    "user_id": {
      "type": "string",
      "description": "ID пользователя"
    }
  },
  "required": ["user_id"]
}`

// PreferencesTool looks up a user's saved search preferences.
type PreferencesTool struct {
	users  ProfileFetcher
	logger *observability.Logger
}

// NewPreferencesTool creates the get_user_preferences tool.
func NewPreferencesTool(users ProfileFetcher, logger *observability.Logger) *PreferencesTool {
	return &PreferencesTool{users: users, logger: logger}
}

func (t *PreferencesTool) Name() string { return "get_user_preferences" }

func (t *PreferencesTool) Description() string {
	return "Получить сохранённые предпочтения пользователя (бюджет, тип кузова, тип топлива). Используй в начале диалога для персонализации."
}

func (t *PreferencesTool) Schema() json.RawMessage {
	return json.RawMessage(preferencesSchema)
}

type preferencesArgs struct {
	UserID string `json:"user_id"`
}

func (t *PreferencesTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var parsed preferencesArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return msgPreferencesError, nil
	}

	t.logger.Info(ctx, "executing get_user_preferences", "user_id", parsed.UserID)

	profile, err := t.users.GetProfile(ctx, parsed.UserID)
	if err != nil {
		t.logger.Error(ctx, "get_user_preferences failed", "error", err)
		return msgPreferencesError, nil
	}

	return formatPreferences(profile), nil
}

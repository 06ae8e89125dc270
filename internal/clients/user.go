package clients

import (
	"context"
	"time"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

// UserProfile holds a user's saved search preferences.
type UserProfile struct {
	ID                    string  `json:"id"`
	Email                 string  `json:"email"`
	Name                  string  `json:"name,omitempty"`
	PreferredBudgetMinRub float64 `json:"preferredBudgetMinRub,omitempty"`
	PreferredBudgetMaxRub float64 `json:"preferredBudgetMaxRub,omitempty"`
	PreferredBodyType     string  `json:"preferredBodyType,omitempty"`
	PreferredFuelType     string  `json:"preferredFuelType,omitempty"`
	City                  string  `json:"city,omitempty"`
}

// UserClient talks to the user profile collaborator.
type UserClient struct {
	base
}

// NewUserClient creates a user service client.
func NewUserClient(baseURL string, timeout time.Duration, logger *observability.Logger) *UserClient {
	return &UserClient{base: newBase(baseURL, timeout, logger)}
}

// GetProfile fetches a user's profile. A 404 from the collaborator is an
// expected condition and yields (nil, nil).
func (c *UserClient) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var profile UserProfile
	err := c.doJSON(ctx, "GET", "/api/users/"+userID+"/profile", nil, &profile)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if profile.ID == "" {
		return nil, nil
	}
	return &profile, nil
}

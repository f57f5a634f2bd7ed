package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrModelNotFound is returned when the server does not list the requested model.
var ErrModelNotFound = errors.New("model not found")

// ModelCatalog queries the /v1/models listing of an OpenAI-compatible server.
type ModelCatalog struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewModelCatalog creates a catalog client.
func NewModelCatalog(baseURL, apiKey string, timeout time.Duration) *ModelCatalog {
	return &ModelCatalog{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// ModelInfo is one entry of the models listing.
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelsResponse represents the response from the /v1/models endpoint.
type ModelsResponse struct {
	Data []ModelInfo `json:"data"`
}

// List returns the ids of all models the server offers.
func (m *ModelCatalog) List(ctx context.Context) ([]string, error) {
	var resp ModelsResponse
	if err := doJSON(ctx, m.client, http.MethodGet, joinURL(m.baseURL, "/v1/models"), m.apiKey, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, model := range resp.Data {
		ids = append(ids, model.ID)
	}
	return ids, nil
}

// EnsureModel returns ErrModelNotFound unless the server lists model.
func (m *ModelCatalog) EnsureModel(ctx context.Context, model string) error {
	ids, err := m.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == model {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotFound, model)
}

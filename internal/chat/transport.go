package chat

import (
	"context"

	"github.com/crewdeck/crewdeck/internal/api"
)

// Transport issues the two task API calls the engine needs. Both must honor
// context cancellation: a cancelled call settles without mutating anything.
// Implementations are called from one goroutine at a time per engine but
// may be shared between engines.
type Transport interface {
	// ListMessages returns the full current history for a task, in any order.
	ListMessages(ctx context.Context, taskID string) ([]Message, error)
	// PostMessage submits a user message. Any server-returned body is
	// irrelevant; the store reconciles on the next listing.
	PostMessage(ctx context.Context, taskID, content string) error
}

// NewAPITransport adapts a crew API client to the engine's Transport.
func NewAPITransport(client *api.Client) Transport {
	return &apiTransport{client: client}
}

type apiTransport struct {
	client *api.Client
}

func (t *apiTransport) ListMessages(ctx context.Context, taskID string) ([]Message, error) {
	items, err := t.client.ListMessages(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(items))
	for _, item := range items {
		out = append(out, Message{
			ID:        item.ID,
			TaskID:    item.TaskID,
			Role:      Role(item.Role),
			Content:   item.Content,
			CreatedAt: item.CreatedAt,
			Sequence:  item.Sequence,
		})
	}
	return out, nil
}

func (t *apiTransport) PostMessage(ctx context.Context, taskID, content string) error {
	return t.client.PostMessage(ctx, taskID, content)
}

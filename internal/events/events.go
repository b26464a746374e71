// Package events publishes entity change notifications to the configured
// message broker. Publishing is best effort: a broker failure is logged and
// never fails the request that triggered it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/agritrack/apiserver/internal/mq"
	"github.com/agritrack/apiserver/types"
)

// Channel carries all entity change events.
const Channel = "farm.events"

// Entity change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is the payload published for every entity mutation.
type ChangeEvent struct {
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	ID     types.ID  `json:"id"`
	At     time.Time `json:"at"`
}

// Decode parses a change event payload as published to Channel.
func Decode(data []byte) (ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ChangeEvent{}, err
	}
	return event, nil
}

// Publisher emits change events through an MQ backend. A nil Publisher is
// valid and publishes nothing, so services can hold one unconditionally.
type Publisher struct {
	mq *mq.MQ
}

func NewPublisher(broker *mq.MQ) *Publisher {
	if broker == nil {
		return nil
	}
	return &Publisher{mq: broker}
}

// EntityChanged publishes one change event.
func (p *Publisher) EntityChanged(ctx context.Context, entity, action string, id types.ID) {
	if p == nil {
		return
	}

	event := ChangeEvent{
		Entity: entity,
		Action: action,
		ID:     id,
		At:     time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("marshal change event", "entity", entity, "action", action, "error", err)
		return
	}

	attrs := map[string]string{"entity": entity, "action": action}
	if _, err := p.mq.Publish(ctx, Channel, data, attrs); err != nil {
		slog.Error("publish change event", "entity", entity, "action", action, "id", id.String(), "error", err)
	}
}

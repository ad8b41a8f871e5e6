package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Event types published by the catalog for product variants.
const (
	EventTypeVariantsUpdated = "product_variants_updated"
	EventTypeVariantsDeleted = "product_variants_deleted"
)

// ErrMissingEventType is returned when a message carries no event type.
var ErrMissingEventType = errors.New("changed entities: missing event type")

// ChangedEntities is the envelope delivered on the message bus whenever
// catalog entities change.
type ChangedEntities struct {
	Meta Meta `json:"meta"`
	Data Data `json:"data"`
}

// Meta describes what happened and in which scope.
type Meta struct {
	Scope     string `json:"scope,omitempty"`
	EventType string `json:"event_type"`
}

// Data lists the entities affected by the event.
type Data struct {
	Entities []Entity `json:"entities"`
}

// Entity references a changed entity. Attributes optionally lists the
// attribute codes that changed.
type Entity struct {
	EntityID   string   `json:"entity_id"`
	Attributes []string `json:"attributes,omitempty"`
}

// ParseChangedEntities decodes a bus payload.
func ParseChangedEntities(payload []byte) (ChangedEntities, error) {
	var msg ChangedEntities
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ChangedEntities{}, fmt.Errorf("decode changed entities: %w", err)
	}
	if strings.TrimSpace(msg.Meta.EventType) == "" {
		return ChangedEntities{}, ErrMissingEventType
	}
	return msg, nil
}

// EntityIDs returns the entity ids in message order. Blank ids are skipped.
func (m ChangedEntities) EntityIDs() []string {
	ids := make([]string, 0, len(m.Data.Entities))
	for _, e := range m.Data.Entities {
		if strings.TrimSpace(e.EntityID) == "" {
			continue
		}
		ids = append(ids, e.EntityID)
	}
	return ids
}

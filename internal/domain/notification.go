package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultActor is recorded as CreatedBy when no principal is attached to a change.
const DefaultActor = "System"

// Operation is the kind of mutation a notification reports.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// ParseOperation accepts only the three enumerated values.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OperationCreate, OperationUpdate, OperationDelete:
		return op, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidOperation)
}

func (o Operation) Valid() bool {
	_, err := ParseOperation(string(o))
	return err == nil
}

func (o *Operation) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	op, err := ParseOperation(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Notification is a single entity change event. It is built once by the
// notification service and never edited afterwards; IsRead and ReadAt are
// carried on the wire but nothing sets them yet.
type Notification struct {
	ID         int64      `json:"Id"`
	EntityType string     `json:"EntityType"`
	EntityID   string     `json:"EntityId"`
	Operation  Operation  `json:"Operation"`
	Message    string     `json:"Message"`
	CreatedAt  time.Time  `json:"CreatedAt"`
	CreatedBy  string     `json:"CreatedBy"`
	IsRead     bool       `json:"IsRead"`
	ReadAt     *time.Time `json:"ReadAt"`
}

// EntityChange is what a producer reports after a successful commit.
type EntityChange struct {
	EntityType  string    `json:"entity_type" validate:"required"`
	EntityID    string    `json:"entity_id" validate:"required"`
	Operation   Operation `json:"operation" validate:"required,operation"`
	DisplayName string    `json:"display_name,omitempty"`
	Actor       string    `json:"actor,omitempty"`
}

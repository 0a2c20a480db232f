package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperation(t *testing.T) {
	for _, s := range []string{"CREATE", "UPDATE", "DELETE"} {
		op, err := ParseOperation(s)
		require.NoError(t, err)
		assert.Equal(t, Operation(s), op)
	}

	_, err := ParseOperation("create")
	assert.True(t, errors.Is(err, ErrInvalidOperation))
	_, err = ParseOperation("")
	assert.True(t, errors.Is(err, ErrInvalidOperation))
}

func TestNotification_WireFieldNames(t *testing.T) {
	n := Notification{
		ID:         3,
		EntityType: "Course",
		EntityID:   "1050",
		Operation:  OperationCreate,
		Message:    "New Course 'Chemistry' has been created",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		CreatedBy:  DefaultActor,
	}
	b, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, key := range []string{"Id", "EntityType", "EntityId", "Operation", "Message", "CreatedAt", "CreatedBy", "IsRead", "ReadAt"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "CREATE", raw["Operation"])
	assert.Nil(t, raw["ReadAt"])
	assert.Equal(t, false, raw["IsRead"])
}

func TestNotification_UnmarshalRejectsUnknownOperation(t *testing.T) {
	var n Notification
	err := json.Unmarshal([]byte(`{"Id":1,"EntityType":"Course","EntityId":"1","Operation":"ARCHIVE"}`), &n)
	assert.True(t, errors.Is(err, ErrInvalidOperation))
}

package validate

import (
	"errors"
	"testing"

	"github.com/contoso-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_ValidChange(t *testing.T) {
	err := Struct(domain.EntityChange{EntityType: "Course", EntityID: "1050", Operation: domain.OperationCreate})
	assert.NoError(t, err)
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(domain.EntityChange{Operation: domain.OperationUpdate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'entity_type' failed 'required'")
	assert.Contains(t, err.Error(), "field 'entity_id' failed 'required'")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestStruct_RejectsUnknownOperation(t *testing.T) {
	err := Struct(domain.EntityChange{EntityType: "Course", EntityID: "1", Operation: "ARCHIVE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'operation' failed 'operation'")
}

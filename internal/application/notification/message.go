package notification

import (
	"fmt"
	"strings"

	"github.com/contoso-notify/internal/domain"
)

// Message renders the human-readable text for a change. A blank display
// name falls back to the entity id.
func Message(entityType, entityID string, op domain.Operation, displayName string) string {
	displayText := fmt.Sprintf("%s (ID: %s)", entityType, entityID)
	if strings.TrimSpace(displayName) != "" {
		displayText = fmt.Sprintf("%s '%s'", entityType, displayName)
	}

	switch op {
	case domain.OperationCreate:
		return fmt.Sprintf("New %s has been created", displayText)
	case domain.OperationUpdate:
		return fmt.Sprintf("%s has been updated", displayText)
	case domain.OperationDelete:
		return fmt.Sprintf("%s has been deleted", displayText)
	default:
		return fmt.Sprintf("%s operation: %s", displayText, op)
	}
}

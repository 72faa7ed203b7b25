package helpers

import (
	"github.com/google/uuid"
)

// GenerateUUID returns a random identifier, used to tag each admin run.
func GenerateUUID() string {
	return uuid.New().String()
}

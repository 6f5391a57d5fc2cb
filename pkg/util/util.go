package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a standard v4 UUID.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID returns a v4 UUID without dashes.
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

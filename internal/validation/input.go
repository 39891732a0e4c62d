package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// Input size limits to prevent resource exhaustion.
const (
	MaxJSONPayload = 1048576 // 1MB for JSON payloads
	MaxURLLength   = 2048    // Standard browser URL limit
)

// ValidateJSONPayload validates JSON payload size.
func ValidateJSONPayload(payload string) error {
	if payload == "" {
		return fmt.Errorf("JSON payload cannot be empty")
	}

	if len(payload) > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, len(payload))
	}

	return nil
}

// ParsePositiveID parses a string as a positive integer ID.
// Accepts an optional leading # (as copied from the Overview UI).
func ParsePositiveID(s string, fieldName string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", fieldName)
	}
	return id, nil
}

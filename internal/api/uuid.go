package api

import (
	"github.com/google/uuid"
)

// uuidParse wraps uuid.Parse so handler files don't import uuid directly.
func uuidParse(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

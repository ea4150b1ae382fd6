package common

import (
	"github.com/google/uuid"
)

// NewPageID generates a unique page ID with the "page_" prefix
// Format: page_<uuid>
func NewPageID() string {
	return "page_" + uuid.New().String()
}

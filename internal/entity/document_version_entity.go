package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentVersion is an immutable content snapshot. Versions are kept
// newest-first per document.
type DocumentVersion struct {
	Id            uuid.UUID
	DocumentId    uuid.UUID
	VersionNumber int
	Content       string
	CreatedAt     time.Time
}

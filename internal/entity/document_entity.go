package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID
	WorkspaceId    uuid.UUID
	Title          string
	Type           string
	Content        string
	Embedding      []float32 // nil until the embedding pipeline has run
	CurrentVersion int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DocumentRef is the lightweight projection used for ranking.
// Content is deliberately absent to bound memory on large workspaces.
type DocumentRef struct {
	Id        uuid.UUID
	Title     string
	Type      string
	Embedding []float32
	UpdatedAt time.Time
}

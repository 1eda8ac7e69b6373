package decay

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time for deterministic analysis in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Document is the evaluator view of a stored document.
type Document struct {
	Id        uuid.UUID
	Title     string
	Type      string
	Content   string
	Embedding []float32
	UpdatedAt time.Time
}

// Version is one historical snapshot of a document's content.
type Version struct {
	Id        uuid.UUID
	Number    int
	Content   string
	CreatedAt time.Time
}

// Citation points at the document or document version a reason refers to.
// Version is zero when the citation targets the document as a whole.
type Citation struct {
	DocumentId uuid.UUID `json:"documentId"`
	Version    int       `json:"version,omitempty"`
}

// Signal is one evaluator's verdict on a single decay dimension.
type Signal struct {
	Detected  bool
	Weight    float64
	Reasons   []string
	Citations []Citation
}

// Evaluator scores one independent dimension of document decay. Evaluators
// are pure: the same inputs always produce the same signal.
type Evaluator interface {
	Name() string
	Evaluate(document Document, versions []Version, siblings []Document) Signal
}

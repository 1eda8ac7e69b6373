package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskQuestionRequest struct {
	WorkspaceId uuid.UUID `json:"workspace_id" validate:"required"`
	Question    string    `json:"question" validate:"required"`
}

type AnswerSource struct {
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Similarity float64   `json:"similarity"`
	Excerpt    string    `json:"excerpt"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AnswerWarning struct {
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	DocumentId *uuid.UUID `json:"document_id,omitempty"`
}

type AskQuestionResponse struct {
	Answer     string          `json:"answer"`
	Confidence float64         `json:"confidence"`
	Sources    []AnswerSource  `json:"sources"`
	Warnings   []AnswerWarning `json:"warnings"`
}

type SearchDocumentsResponse struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Similarity float64   `json:"similarity"`
	Excerpt    string    `json:"excerpt"`
	UpdatedAt  time.Time `json:"updated_at"`
}

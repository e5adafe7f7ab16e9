package entity

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/exam-extractor/constants"
)

// Paper is a named set of questions in the question bank.
type Paper struct {
	ID             uuid.UUID
	Title          string
	Type           constants.PaperType
	Instructions   string
	TotalQuestions int
}

package entity

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/exam-extractor/constants"
)

// Question is the extracted, answer-keyed record emitted by the pipeline.
type Question struct {
	ID             uuid.UUID              `json:"id"`
	QuestionNumber string                 `json:"question_number,omitempty"`
	QuestionText   string                 `json:"question_text"`
	Options        Options                `json:"options"`
	CorrectOption  string                 `json:"correct_option"`
	Explanation    string                 `json:"explanation"`
	Topic          string                 `json:"topic,omitempty"`
	Confidence     float64                `json:"confidence"`
	AnswerSource   constants.AnswerSource `json:"answer_source,omitempty"`
	ReviewReasons  []string               `json:"review_reasons,omitempty"`
	Provenance     Provenance             `json:"provenance"`
}

// Provenance keeps enough of the source to audit a record by hand.
type Provenance struct {
	ChunkIndex int    `json:"chunk_index"`
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
	RawChunk   string `json:"raw_chunk"`
	Strategy   string `json:"strategy,omitempty"`
	LLMRaw     string `json:"llm_raw,omitempty"`
	LLMError   string `json:"llm_error,omitempty"`
}

// AnswerText returns the option text for CorrectOption, or "".
func (q Question) AnswerText() string {
	return q.Options.Get(q.CorrectOption)
}

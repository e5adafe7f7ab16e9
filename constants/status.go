package constants

// Bucket is the output collection a classified question lands in.
type Bucket string

// Stable values (written into output file names and metrics labels).
const (
	BucketAccepted Bucket = "accepted"
	BucketReview   Bucket = "review"
)

// AnswerSource records which resolver step produced correct_option.
type AnswerSource string

const (
	AnswerSourceNone             AnswerSource = ""
	AnswerSourceMarker           AnswerSource = "marker"
	AnswerSourceLLM              AnswerSource = "llm"
	AnswerSourceMarkerFuzzy      AnswerSource = "marker_fuzzy"
	AnswerSourceExplanationFuzzy AnswerSource = "explanation_fuzzy"
)

// PaperType is the papers.type column.
type PaperType string

const (
	PaperTypeMock     PaperType = "mock"
	PaperTypePractice PaperType = "practice"
)

var PaperTypes = []string{string(PaperTypeMock), string(PaperTypePractice)}

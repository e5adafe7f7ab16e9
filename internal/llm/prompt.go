package llm

import (
	"strings"

	"github.com/joseph-ayodele/exam-extractor/internal/entity"
)

const instructions = `You clean up multiple-choice exam questions recovered by OCR.
Return ONLY a JSON object with exactly these keys:
  "question": the question text (string, required, non-empty),
  "options": an object with keys "a", "b", "c", "d" (strings; "" when an option is missing),
  "correct_option": one of "a", "b", "c", "d", or "" when the answer is not stated,
  "explanation": the explanation text (string; "" when absent).
Fix obvious OCR noise but never invent options, answers or explanations that the text does not support.
Use lower-case option letters.`

const exampleBlock = `Question: What color is the sky?
A) Green
B) Blue
C) Red
D) Yellow
Explanation:
CORRECT ANSWER: B. Rayleigh scattering.`

const exampleJSON = `{"question": "What color is the sky?", "options": {"a": "Green", "b": "Blue", "c": "Red", "d": "Yellow"}, "correct_option": "b", "explanation": "Rayleigh scattering."}`

// CompactBlock renders heuristic fields in the fixed block layout the
// prompt example uses.
func CompactBlock(in Input) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(strings.TrimSpace(in.QuestionText))
	b.WriteString("\n")
	for _, l := range entity.Letters {
		b.WriteString(strings.ToUpper(l))
		b.WriteString(") ")
		b.WriteString(strings.TrimSpace(in.Options.Get(l)))
		b.WriteString("\n")
	}
	b.WriteString("Explanation:\n")
	b.WriteString(strings.TrimSpace(in.Explanation))
	return b.String()
}

// BuildPrompt composes instructions, one worked example and the block.
func BuildPrompt(in Input, mode Mode) string {
	parts := []string{
		instructions,
		"Example input:\n" + exampleBlock,
		"Example output:\n" + exampleJSON,
		"Input:\n" + CompactBlock(in),
		"Output:",
	}
	prompt := strings.Join(parts, "\n\n")
	if mode == ModeStrict {
		prompt = "Extract JSON only. " + prompt +
			"\nRespond with a single JSON object and nothing else: no prose, no code fences."
	}
	return prompt
}

package entity

import "strings"

// RawPage is one page of OCR output. It is input only and never mutated.
type RawPage struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

// JoinPages concatenates page texts with a blank line between pages.
func JoinPages(pages []RawPage) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

package model

import (
	"strings"
	"time"
)

// FormValues is the flat shape the authoring form posts: delimited strings for
// the list fields, slides already structured.
type FormValues struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Subtitle           string  `json:"subtitle"`
	Level              string  `json:"level"`
	Duration           string  `json:"duration"`
	SkillCodes         string  `json:"skill_codes"`
	LearningObjectives string  `json:"learning_objectives"`
	Slides             []Slide `json:"slides"`
	ContentVersion     string  `json:"content_version"`
}

// FromForm builds a lesson document from form values: skill codes split on
// commas, objectives split on newlines, blanks dropped, last_updated stamped,
// content_version carried forward unchanged. A mostly empty form still yields
// a structurally valid document.
func FromForm(fv FormValues) *LessonDocument {
	return &LessonDocument{
		ID:                 strings.TrimSpace(fv.ID),
		Title:              strings.TrimSpace(fv.Title),
		Subtitle:           strings.TrimSpace(fv.Subtitle),
		Level:              strings.TrimSpace(fv.Level),
		Duration:           strings.TrimSpace(fv.Duration),
		SkillCodes:         splitClean(fv.SkillCodes, ","),
		LearningObjectives: splitClean(fv.LearningObjectives, "\n"),
		Slides:             fv.Slides,
		Metadata: LessonMetadata{
			LastUpdated:    time.Now().UTC(),
			ContentVersion: fv.ContentVersion,
		},
	}
}

// ToForm is the inverse used by the editors to repopulate the form.
func ToForm(doc *LessonDocument) FormValues {
	return FormValues{
		ID:                 doc.ID,
		Title:              doc.Title,
		Subtitle:           doc.Subtitle,
		Level:              doc.Level,
		Duration:           doc.Duration,
		SkillCodes:         strings.Join(doc.SkillCodes, ", "),
		LearningObjectives: strings.Join(doc.LearningObjectives, "\n"),
		Slides:             doc.Slides,
		ContentVersion:     doc.Metadata.ContentVersion,
	}
}

func splitClean(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

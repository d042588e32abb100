package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Slide type vocabulary. The content payload of a slide is keyed by its type.
const (
	SlideContent            = "content"
	SlideStrategyTeaching   = "strategy_teaching"
	SlideWorkedExample      = "worked_example"
	SlideConceptTeaching    = "concept_teaching"
	SlidePracticePrompt     = "practice_prompt"
	SlideLearningObjectives = "learning_objectives"
)

// swagger:model LessonDocument
type LessonDocument struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Subtitle           string         `json:"subtitle"`
	Level              string         `json:"level"`
	Duration           string         `json:"duration"`
	SkillCodes         []string       `json:"skill_codes"`
	LearningObjectives []string       `json:"learning_objectives"`
	Slides             []Slide        `json:"slides"`
	Metadata           LessonMetadata `json:"metadata"`
}

type LessonMetadata struct {
	// LastUpdated is stamped on every save. ContentVersion is carried forward
	// unchanged across saves; nothing in the product increments it.
	LastUpdated    time.Time `json:"last_updated"`
	ContentVersion string    `json:"content_version,omitempty"`
}

// Slide keeps the raw content bytes so publish copies stay byte-faithful;
// DecodeContent gives the typed view.
type Slide struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content,omitempty"`
}

type ContentPayload struct {
	Heading string   `json:"heading,omitempty"`
	Text    string   `json:"text,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

type StrategyTeachingPayload struct {
	Strategy string   `json:"strategy"`
	Steps    []string `json:"steps,omitempty"`
	Example  string   `json:"example,omitempty"`
}

type WorkedExamplePayload struct {
	Problem string   `json:"problem"`
	Steps   []string `json:"steps,omitempty"`
	Answer  string   `json:"answer,omitempty"`
}

type ConceptTeachingPayload struct {
	Concept     string   `json:"concept"`
	Explanation string   `json:"explanation,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

type PracticePromptPayload struct {
	Prompt        string   `json:"prompt"`
	Choices       []string `json:"choices,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type LearningObjectivesPayload struct {
	Objectives []string `json:"objectives"`
}

func KnownSlideType(t string) bool {
	switch t {
	case SlideContent, SlideStrategyTeaching, SlideWorkedExample,
		SlideConceptTeaching, SlidePracticePrompt, SlideLearningObjectives:
		return true
	}
	return false
}

// DecodeContent parses the slide's content into the variant struct for its type.
// A nil content map decodes to the zero payload.
func (s Slide) DecodeContent() (interface{}, error) {
	if !KnownSlideType(s.Type) {
		return nil, fmt.Errorf("slide %q: unknown type %q", s.ID, s.Type)
	}

	var payload interface{}
	switch s.Type {
	case SlideContent:
		payload = &ContentPayload{}
	case SlideStrategyTeaching:
		payload = &StrategyTeachingPayload{}
	case SlideWorkedExample:
		payload = &WorkedExamplePayload{}
	case SlideConceptTeaching:
		payload = &ConceptTeachingPayload{}
	case SlidePracticePrompt:
		payload = &PracticePromptPayload{}
	case SlideLearningObjectives:
		payload = &LearningObjectivesPayload{}
	}

	if len(s.Content) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(s.Content, payload); err != nil {
		return nil, fmt.Errorf("slide %q: decode %s content: %w", s.ID, s.Type, err)
	}
	return payload, nil
}

// ValidateLesson is the single validator shared by every entry point that
// persists a lesson. The document id doubles as the storage key, so it is
// required; slide types must come from the fixed vocabulary and their payloads
// must decode.
func ValidateLesson(doc *LessonDocument) error {
	if doc == nil {
		return fmt.Errorf("lesson document is nil")
	}
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("lesson id is required")
	}
	if strings.ContainsAny(doc.ID, "/\\ ") {
		return fmt.Errorf("lesson id %q is not a valid storage key", doc.ID)
	}
	for i, slide := range doc.Slides {
		if _, err := slide.DecodeContent(); err != nil {
			return fmt.Errorf("slides[%d]: %w", i, err)
		}
	}
	return nil
}

// DraftPath and friends are the storage layout the rest of the product depends
// on; the shapes are fixed and must not change.
func DraftPath(id string) string {
	return "lessons/drafts/" + id + ".json"
}

func VersionPath(id string, at time.Time) string {
	ts := strings.ReplaceAll(at.UTC().Format(time.RFC3339), ":", "")
	return "lessons/drafts/versions/" + id + "_" + ts + ".json"
}

const ManifestPath = "lessons/manifest.json"

// VersionDirPath is the snapshot directory for listing.
const VersionDirPath = "lessons/drafts/versions"

// Manifest indexes published lessons by id.
type Manifest map[string]ManifestEntry

type ManifestEntry struct {
	Title       string    `json:"title"`
	SkillCodes  []string  `json:"skill_codes"`
	Filepath    string    `json:"filepath"`
	SlideCount  int       `json:"slide_count"`
	LastUpdated time.Time `json:"last_updated"`
}

func (m Manifest) Upsert(doc *LessonDocument, filepath string) {
	m[doc.ID] = ManifestEntry{
		Title:       doc.Title,
		SkillCodes:  doc.SkillCodes,
		Filepath:    filepath,
		SlideCount:  len(doc.Slides),
		LastUpdated: doc.Metadata.LastUpdated,
	}
}

// PublishedPath derives the canonical location for a lesson that has never
// been published and carries no explicit filepath:
// lessons/<domain>/<skill>/<slug>.json.
func PublishedPath(doc *LessonDocument) string {
	domain := Slugify(doc.Level)
	if domain == "" {
		domain = "general"
	}
	skill := "misc"
	if len(doc.SkillCodes) > 0 {
		if s := Slugify(doc.SkillCodes[0]); s != "" {
			skill = s
		}
	}
	slug := Slugify(doc.Title)
	if slug == "" {
		slug = doc.ID
	}
	return "lessons/" + domain + "/" + skill + "/" + slug + ".json"
}

// Slugify lowercases and collapses anything outside [a-z0-9] into single
// hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

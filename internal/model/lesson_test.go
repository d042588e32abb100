package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValidateLesson(t *testing.T) {
	doc := &LessonDocument{ID: "transitions-1", Title: "Transitions"}
	if err := ValidateLesson(doc); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	if err := ValidateLesson(nil); err == nil {
		t.Fatal("nil document accepted")
	}
	if err := ValidateLesson(&LessonDocument{}); err == nil {
		t.Fatal("empty id accepted")
	}
	for _, id := range []string{"a/b", "a\\b", "a b"} {
		if err := ValidateLesson(&LessonDocument{ID: id}); err == nil {
			t.Fatalf("id %q accepted", id)
		}
	}
}

func TestValidateLessonRejectsBadSlides(t *testing.T) {
	doc := &LessonDocument{
		ID:     "l1",
		Slides: []Slide{{ID: "s1", Type: "quiz"}},
	}
	if err := ValidateLesson(doc); err == nil {
		t.Fatal("unknown slide type accepted")
	}

	doc.Slides = []Slide{{
		ID:      "s1",
		Type:    SlidePracticePrompt,
		Content: json.RawMessage(`{"prompt": 42}`),
	}}
	if err := ValidateLesson(doc); err == nil {
		t.Fatal("undecodable payload accepted")
	}
}

func TestDecodeContent(t *testing.T) {
	s := Slide{
		ID:      "s1",
		Type:    SlidePracticePrompt,
		Content: json.RawMessage(`{"prompt":"Pick one","choices":["a","b"],"correct_answer":"b"}`),
	}
	payload, err := s.DecodeContent()
	if err != nil {
		t.Fatalf("DecodeContent: %v", err)
	}
	pp, ok := payload.(*PracticePromptPayload)
	if !ok {
		t.Fatalf("wrong payload type %T", payload)
	}
	if pp.Prompt != "Pick one" || len(pp.Choices) != 2 || pp.CorrectAnswer != "b" {
		t.Fatalf("payload not decoded: %+v", pp)
	}

	// absent content decodes to the zero payload for the type
	empty := Slide{ID: "s2", Type: SlideContent}
	payload, err = empty.DecodeContent()
	if err != nil {
		t.Fatalf("empty content: %v", err)
	}
	if _, ok := payload.(*ContentPayload); !ok {
		t.Fatalf("wrong payload type %T", payload)
	}
}

func TestDraftAndVersionPaths(t *testing.T) {
	if got := DraftPath("lesson-1"); got != "lessons/drafts/lesson-1.json" {
		t.Fatalf("DraftPath = %q", got)
	}

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	want := "lessons/drafts/versions/lesson-1_2026-03-14T092653Z.json"
	if got := VersionPath("lesson-1", at); got != want {
		t.Fatalf("VersionPath = %q, want %q", got, want)
	}

	// non-UTC input normalizes to UTC before formatting
	est := time.FixedZone("EST", -5*3600)
	if got := VersionPath("lesson-1", at.In(est)); got != want {
		t.Fatalf("VersionPath in EST = %q, want %q", got, want)
	}
}

func TestPublishedPath(t *testing.T) {
	doc := &LessonDocument{
		ID:         "tr-1",
		Title:      "Transitions & Flow",
		Level:      "Foundation",
		SkillCodes: []string{"CC.B", "CC.C"},
	}
	if got, want := PublishedPath(doc), "lessons/foundation/cc-b/transitions-flow.json"; got != want {
		t.Fatalf("PublishedPath = %q, want %q", got, want)
	}

	// every component has a fallback
	bare := &LessonDocument{ID: "x9"}
	if got, want := PublishedPath(bare), "lessons/general/misc/x9.json"; got != want {
		t.Fatalf("PublishedPath bare = %q, want %q", got, want)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Transitions & Flow": "transitions-flow",
		"  CC.B  ":           "cc-b",
		"already-slugged":    "already-slugged",
		"!!!":                "",
		"A--B":               "a-b",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestManifestUpsert(t *testing.T) {
	m := Manifest{}
	doc := &LessonDocument{
		ID:         "l1",
		Title:      "Lesson One",
		SkillCodes: []string{"CC.A"},
		Slides:     []Slide{{ID: "s1", Type: SlideContent}},
		Metadata:   LessonMetadata{LastUpdated: time.Now().UTC()},
	}
	m.Upsert(doc, "lessons/general/cc-a/lesson-one.json")

	entry, ok := m["l1"]
	if !ok {
		t.Fatal("entry missing after upsert")
	}
	if entry.Title != "Lesson One" || entry.SlideCount != 1 {
		t.Fatalf("entry = %+v", entry)
	}
}

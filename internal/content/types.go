// Package content defines the lesson material model and loads it from
// YAML files on disk.
package content

// Chapter is an ordered grouping of lessons. Chapters are immutable
// once loaded; clients fetch the full set once per session.
type Chapter struct {
	ID          int             `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Lessons     []LessonSummary `json:"lessons" yaml:"-"`
}

// LessonSummary is the brief view of a lesson used in chapter listings
// and sidebar navigation.
type LessonSummary struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Lesson is the full lesson content including code examples and notes.
type Lesson struct {
	ID           string        `json:"id" yaml:"id"`
	ChapterID    int           `json:"chapterId" yaml:"-"`
	Title        string        `json:"title" yaml:"title"`
	Content      string        `json:"content" yaml:"content"`
	CodeExamples []CodeExample `json:"codeExamples" yaml:"code_examples"`
	Notes        []string      `json:"notes,omitempty" yaml:"notes"`
}

// CodeExample holds a titled code snippet.
type CodeExample struct {
	Title string `json:"title" yaml:"title"`
	Code  string `json:"code" yaml:"code"`
}

// Quiz holds the multiple-choice questions gating completion of one lesson.
type Quiz struct {
	LessonID  string     `json:"lessonId" yaml:"-"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Question is a single multiple-choice question. Answer indexes Options.
type Question struct {
	ID          string   `json:"id" yaml:"id"`
	Text        string   `json:"text" yaml:"text"`
	Options     []string `json:"options" yaml:"options"`
	Answer      int      `json:"answer" yaml:"answer"`
	Explanation string   `json:"explanation" yaml:"explanation"`
}

package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// chapterFile is the on-disk shape of one chapter YAML file: chapter
// metadata plus full lessons, each with an optional embedded quiz.
type chapterFile struct {
	ID          int          `yaml:"id"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Lessons     []lessonFile `yaml:"lessons"`
}

type lessonFile struct {
	Lesson `yaml:",inline"`
	Quiz   *quizFile `yaml:"quiz"`
}

type quizFile struct {
	Questions []Question `yaml:"questions"`
}

// Store loads and serves lesson material from a content directory.
type Store struct {
	chapters []Chapter
	lessons  map[string]Lesson
	quizzes  map[string]Quiz
	mu       sync.RWMutex
}

// NewStore walks rootDir, loading every .yaml/.yml chapter file.
// Files that fail to parse or validate are skipped with a warning so
// one broken chapter does not take the whole catalogue down.
func NewStore(rootDir string) (*Store, error) {
	s := &Store{
		lessons: make(map[string]Lesson),
		quizzes: make(map[string]Quiz),
	}

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		if err := s.loadChapter(path); err != nil {
			slog.Warn("skipping invalid chapter file", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading content from %s: %w", rootDir, err)
	}

	sort.Slice(s.chapters, func(i, j int) bool { return s.chapters[i].ID < s.chapters[j].ID })

	slog.Info("content loaded",
		"chapters", len(s.chapters),
		"lessons", len(s.lessons),
		"quizzes", len(s.quizzes),
	)
	return s, nil
}

func (s *Store) loadChapter(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	var ch chapterFile
	if err := yaml.Unmarshal(data, &ch); err != nil {
		return fmt.Errorf("decode chapter: %w", err)
	}
	if err := validateChapter(ch); err != nil {
		return err
	}

	chapter := Chapter{
		ID:          ch.ID,
		Title:       ch.Title,
		Description: ch.Description,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lf := range ch.Lessons {
		lesson := lf.Lesson
		lesson.ChapterID = ch.ID
		s.lessons[lesson.ID] = lesson
		chapter.Lessons = append(chapter.Lessons, LessonSummary{ID: lesson.ID, Title: lesson.Title})

		if lf.Quiz != nil {
			s.quizzes[lesson.ID] = Quiz{LessonID: lesson.ID, Questions: lf.Quiz.Questions}
		}
	}
	s.chapters = append(s.chapters, chapter)
	return nil
}

// Chapters returns all chapters in ID order.
func (s *Store) Chapters() []Chapter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Chapter{}, s.chapters...)
}

// Lesson returns the full lesson by ID.
func (s *Store) Lesson(id string) (Lesson, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lessons[id]
	return l, ok
}

// Quiz returns the quiz for a lesson, if one exists.
func (s *Store) Quiz(lessonID string) (Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[lessonID]
	return q, ok
}

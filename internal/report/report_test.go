package report_test

import (
	"testing"

	"github.com/KeitoID/GoLangStudyApp/internal/content"
	"github.com/KeitoID/GoLangStudyApp/internal/report"
)

func TestBuild(t *testing.T) {
	chapters := []content.Chapter{
		{ID: 1, Title: "Basics", Lessons: []content.LessonSummary{
			{ID: "l1", Title: "Hello"},
			{ID: "l2", Title: "Variables"},
		}},
		{ID: 2, Title: "Types", Lessons: []content.LessonSummary{
			{ID: "l3", Title: "Structs"},
		}},
	}
	completed := map[string]struct{}{"l1": {}, "l3": {}}

	f, err := report.Build("alice", chapters, completed)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer f.Close()

	cell := func(ref string) string {
		t.Helper()
		v, err := f.GetCellValue("Progress", ref)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}

	if got := cell("A1"); got != "Chapter" {
		t.Errorf("A1 = %q, want Chapter", got)
	}
	if got := cell("B2"); got != "l1" {
		t.Errorf("B2 = %q, want l1", got)
	}
	if got := cell("D2"); got != "yes" {
		t.Errorf("D2 = %q, want yes", got)
	}
	if got := cell("D3"); got != "no" {
		t.Errorf("D3 = %q, want no", got)
	}
	if got := cell("A4"); got != "Types" {
		t.Errorf("A4 = %q, want Types", got)
	}

	// Summary row sits one blank row below the last lesson.
	if got := cell("C6"); got != "alice: 2 of 3 lessons" {
		t.Errorf("C6 = %q", got)
	}
}

func TestBuild_NoLessons(t *testing.T) {
	f, err := report.Build("bob", nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer f.Close()

	v, err := f.GetCellValue("Progress", "C3")
	if err != nil {
		t.Fatal(err)
	}
	if v != "bob: 0 of 0 lessons" {
		t.Errorf("C3 = %q", v)
	}
}

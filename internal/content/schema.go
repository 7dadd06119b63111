package content

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// chapterSchema is the JSON schema every chapter file must satisfy.
// Structural rules only; index bounds are checked in validateChapter.
const chapterSchema = `{
  "type": "object",
  "required": ["id", "title", "lessons"],
  "properties": {
    "id": {"type": "integer", "minimum": 1},
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "lessons": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "title", "content"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "content": {"type": "string", "minLength": 1},
          "code_examples": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title", "code"],
              "properties": {
                "title": {"type": "string"},
                "code": {"type": "string"}
              }
            }
          },
          "notes": {"type": "array", "items": {"type": "string"}},
          "quiz": {
            "type": "object",
            "required": ["questions"],
            "properties": {
              "questions": {
                "type": "array",
                "minItems": 1,
                "items": {
                  "type": "object",
                  "required": ["id", "text", "options", "answer"],
                  "properties": {
                    "id": {"type": "string", "minLength": 1},
                    "text": {"type": "string", "minLength": 1},
                    "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
                    "answer": {"type": "integer", "minimum": 0},
                    "explanation": {"type": "string"}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// validateDocument checks a decoded chapter document against chapterSchema.
func validateDocument(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(chapterSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("chapter file invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// validateChapter enforces the rules the schema cannot express: every
// quiz answer key must index into its question's options.
func validateChapter(ch chapterFile) error {
	seen := make(map[string]struct{})
	for _, l := range ch.Lessons {
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("duplicate lesson id %q", l.ID)
		}
		seen[l.ID] = struct{}{}

		if l.Quiz == nil {
			continue
		}
		for _, q := range l.Quiz.Questions {
			if q.Answer < 0 || q.Answer >= len(q.Options) {
				return fmt.Errorf("lesson %q question %q: answer %d out of range (%d options)",
					l.ID, q.ID, q.Answer, len(q.Options))
			}
		}
	}
	return nil
}

package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// ErrMalformed is returned when the reply is not a JSON document.
var ErrMalformed = errors.New("setup: reply is not valid JSON")

// IncompleteError reports a reply that is valid JSON but does not match
// the schema. Problems holds one entry per offending field path.
type IncompleteError struct {
	Problems []string
}

func (e *IncompleteError) Error() string {
	return "setup: reply does not match schema: " + strings.Join(e.Problems, "; ")
}

// Parse decodes a raw model reply into a Setup. The text is trimmed and a
// surrounding markdown code fence is removed; then the document must decode
// strictly and carry every required field with the right leaf type.
func Parse(raw string) (Setup, error) {
	text := stripFence(strings.TrimSpace(raw))

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Setup{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if problems := check(Schema(), doc, ""); len(problems) > 0 {
		return Setup{}, &IncompleteError{Problems: problems}
	}

	var s Setup
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return Setup{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

// Marshal encodes s the same way the model is asked to reply.
func Marshal(s Setup) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// drop the info string, e.g. ```json
		body = body[nl+1:]
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

func check(s *genai.Schema, v any, path string) []string {
	switch s.Type {
	case genai.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return []string{describe(path, "object", v)}
		}
		var problems []string
		for _, name := range s.Required {
			child := join(path, name)
			val, ok := obj[name]
			if !ok {
				problems = append(problems, child+": missing")
				continue
			}
			problems = append(problems, check(s.Properties[name], val, child)...)
		}
		return problems
	case genai.TypeNumber:
		if _, ok := v.(float64); !ok {
			return []string{describe(path, "number", v)}
		}
	case genai.TypeString:
		if _, ok := v.(string); !ok {
			return []string{describe(path, "string", v)}
		}
	}
	return nil
}

func describe(path, want string, got any) string {
	if path == "" {
		path = "$"
	}
	kind := "null"
	switch got.(type) {
	case map[string]any:
		kind = "object"
	case []any:
		kind = "array"
	case float64:
		kind = "number"
	case string:
		kind = "string"
	case bool:
		kind = "boolean"
	}
	return fmt.Sprintf("%s: expected %s, got %s", path, want, kind)
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

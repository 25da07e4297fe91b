package setup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	genai "google.golang.org/genai"
)

// Field is one leaf value of a Setup addressed by its dotted JSON path.
type Field struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// Section groups the leaf fields under one top-level key, e.g. "aero".
type Section struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Change is a leaf whose value differs between two revisions.
type Change struct {
	Path string `json:"path"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Flatten lists every leaf of s in schema order.
func Flatten(s Setup) []Field {
	var out []Field
	for _, sec := range Sections(s) {
		out = append(out, sec.Fields...)
	}
	return out
}

// Sections splits s into its top-level groups. The summary is its own
// section with a single field.
func Sections(s Setup) []Section {
	raw, _ := json.Marshal(s)
	var doc map[string]any
	_ = json.Unmarshal(raw, &doc)

	schema := Schema()
	out := make([]Section, 0, len(schema.PropertyOrdering))
	for _, name := range schema.PropertyOrdering {
		sec := Section{Name: name}
		walk(schema.Properties[name], doc[name], name, &sec.Fields)
		out = append(out, sec)
	}
	return out
}

func walk(s *genai.Schema, v any, path string, out *[]Field) {
	if s.Type == genai.TypeObject {
		obj, _ := v.(map[string]any)
		for _, name := range s.PropertyOrdering {
			walk(s.Properties[name], obj[name], path+"."+name, out)
		}
		return
	}
	*out = append(*out, Field{Path: path, Value: formatValue(v)})
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// Diff reports the leaves that changed from prev to next.
func Diff(prev, next Setup) []Change {
	before := Flatten(prev)
	after := Flatten(next)
	var out []Change
	for i := range after {
		if before[i].Value != after[i].Value {
			out = append(out, Change{Path: after[i].Path, From: before[i].Value, To: after[i].Value})
		}
	}
	return out
}

// UnifiedDiff renders the change between two revisions as a unified diff of
// "path = value" lines. It returns "" when nothing changed.
func UnifiedDiff(prev, next Setup, fromName, toName string) (string, error) {
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(lines(prev)),
		B:        difflib.SplitLines(lines(next)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  0,
	}
	return difflib.GetUnifiedDiffString(d)
}

func lines(s Setup) string {
	var b strings.Builder
	for _, f := range Flatten(s) {
		b.WriteString(f.Path)
		b.WriteString(" = ")
		b.WriteString(strings.ReplaceAll(f.Value, "\n", " "))
		b.WriteByte('\n')
	}
	return b.String()
}

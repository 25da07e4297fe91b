package setup

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"
)

// The schema and the Setup struct must describe the same tree.
func TestSchemaMatchesStruct(t *testing.T) {
	compareType(t, reflect.TypeOf(Setup{}), Schema(), "$")
}

func compareType(t *testing.T, typ reflect.Type, s *genai.Schema, path string) {
	t.Helper()
	switch typ.Kind() {
	case reflect.Struct:
		require.Equal(t, genai.TypeObject, s.Type, path)
		tags := make([]string, 0, typ.NumField())
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			name := strings.Split(f.Tag.Get("json"), ",")[0]
			tags = append(tags, name)
			child, ok := s.Properties[name]
			if !assert.True(t, ok, "%s.%s missing from schema", path, name) {
				continue
			}
			compareType(t, f.Type, child, path+"."+name)
		}
		assert.ElementsMatch(t, tags, s.Required, "%s required", path)
		assert.Len(t, s.Properties, len(tags), "%s has schema-only properties", path)
	case reflect.Float64:
		assert.Equal(t, genai.TypeNumber, s.Type, path)
	case reflect.String:
		assert.Equal(t, genai.TypeString, s.Type, path)
	default:
		t.Fatalf("%s: unexpected kind %s", path, typ.Kind())
	}
}

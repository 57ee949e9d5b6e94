package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    Spec
		wantErr bool
	}{
		{name: "nil is default", input: nil, want: Single("en")},
		{name: "empty string is default", input: "  ", want: Single("en")},
		{name: "string", input: "fr", want: Single("fr")},
		{name: "string list", input: []string{"en", "ja"}, want: Multi("en", "ja")},
		{name: "decoded list", input: []any{"de", " ru "}, want: Multi("de", "ru")},
		{name: "empty list", input: []any{}, wantErr: true},
		{name: "blank code in list", input: []string{"fr", ""}, wantErr: true},
		{name: "non-string item", input: []any{"fr", 3}, wantErr: true},
		{name: "wrong type", input: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpec(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpec_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		spec      Spec
		want      string
		isDefault bool
		isMulti   bool
	}{
		{name: "zero", spec: Spec{}, want: "en", isDefault: true},
		{name: "single", spec: Single("fr"), want: "fr"},
		{name: "one element list", spec: Multi("fr"), want: "fr"},
		{name: "default only list", spec: Multi("en", "en"), want: "en", isDefault: true},
		{name: "list", spec: Multi("en", "ja", "fr"), want: "[en, ja, fr]", isMulti: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.spec.Normalize()
			assert.Equal(t, tt.want, n.String())
			assert.Equal(t, tt.isDefault, tt.spec.IsDefault())
			assert.Equal(t, tt.isMulti, tt.spec.IsMulti())
		})
	}
}

func TestSpec_YAMLRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(map[string]Spec{"language": Multi("en", "fr")})
	require.NoError(t, err)
	assert.Equal(t, "language:\n    - en\n    - fr\n", string(out))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	spec, err := ParseSpec(decoded["language"])
	require.NoError(t, err)
	assert.Equal(t, Multi("en", "fr"), spec)
}

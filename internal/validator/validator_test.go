package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_CheckKeepsFirstError(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())

	v.Check(true, "title", "never recorded")
	v.Check(false, "title", "first")
	v.Check(false, "title", "second")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"title": "first"}, v.Errors)
}

type sample struct {
	Name     string `json:"name"     validate:"notblank"`
	Flag     *bool  `json:"flag"     validate:"required"`
	Level    string `json:"level"    validate:"oneof=low high"`
	Untagged string
	Hidden   string `json:"-" validate:"max=1"`
}

func TestValidator_Struct(t *testing.T) {
	f := false

	tests := []struct {
		name  string
		input sample
		want  map[string]string
	}{
		{
			name:  "valid, false pointer counts as provided",
			input: sample{Name: "x", Flag: &f, Level: "low"},
			want:  map[string]string{},
		},
		{
			name:  "every rule failing",
			input: sample{Name: " ", Level: "mid", Hidden: "long"},
			want: map[string]string{
				"name":   "must be provided",
				"flag":   "must be provided",
				"level":  "must be one of: low high",
				"Hidden": "must not be more than 1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Struct(&tt.input)
			assert.Equal(t, tt.want, v.Errors)
		})
	}
}

func TestValidator_StructRejectsNonStruct(t *testing.T) {
	v := New()
	v.Struct(42)
	assert.Contains(t, v.Errors, "body")
}

func TestPermittedValue(t *testing.T) {
	assert.True(t, PermittedValue(3, 1, 2, 3))
	assert.False(t, PermittedValue("c", "a", "b"))
	assert.False(t, PermittedValue(1))
}

func TestMinRunes(t *testing.T) {
	assert.True(t, MinRunes("abc", 3))
	assert.False(t, MinRunes("ab", 3))
	assert.True(t, MinRunes("日本語", 3))
}

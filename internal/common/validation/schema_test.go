package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["businessName", "rating"],
  "properties": {
    "businessName": {"type": "string", "minLength": 1},
    "rating": {"type": "integer", "minimum": 1, "maximum": 5},
    "tags": {"type": "array", "items": {"type": "string"}, "maxItems": 2}
  }
}`

func TestSchema_ValidateDocument(t *testing.T) {
	s := MustCompile(testSchema)

	res, err := s.ValidateDocument([]byte(`{"businessName":"Acme","rating":4}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestSchema_ReportsRequiredFieldsByName(t *testing.T) {
	s := MustCompile(testSchema)

	res, err := s.ValidateDocument([]byte(`{"businessName":"Acme"}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.True(t, res.HasErrors("rating"))
	assert.Equal(t, "REQUIRED_FIELD_MISSING", res.GetErrorsForField("rating")[0].Code)
}

func TestSchema_ValidateInputRanges(t *testing.T) {
	s := MustCompile(testSchema)

	res, err := s.ValidateInput(map[string]interface{}{
		"businessName": "Acme",
		"rating":       9,
		"tags":         []string{"a", "b", "c"},
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("rating"))
	assert.True(t, res.HasErrors("tags"))
	assert.Len(t, res.GetErrorMessages(), 2)
}

func TestSchema_InvalidJSON(t *testing.T) {
	s := MustCompile(testSchema)
	_, err := s.ValidateDocument([]byte(`{not json`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"owner@shop.co", true},
		{"a@b.c", true},
		{"no-at-sign.com", false},
		{"two@@signs.com", false},
		{"space in@mail.com", false},
		{"missing@tld", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateEmail(tt.email))
		})
	}
}

func TestValidatePhoneAndURL(t *testing.T) {
	assert.True(t, ValidatePhone("+971 50 123 4567"))
	assert.False(t, ValidatePhone("12ab"))
	assert.True(t, ValidateURL("https://example.com/logo.png"))
	assert.False(t, ValidateURL("example.com"))
}

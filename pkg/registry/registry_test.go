package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_ShippedCatalog(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	assert.NoError(t, reg.EnsureRegistered("supplier.profile.submit", "supplier.inquiry.send"))

	a, ok := reg.Find("supplier.profile.submit")
	require.True(t, ok)
	assert.Equal(t, "submit-profile", a.ID)
	assert.Contains(t, a.ErrorCodes, "SUBMISSION_REJECTED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{
			name: "valid",
			reg:  ActivityRegistry{Activities: []Activity{{ID: "a", TaskType: "x.a", Timeout: "30s"}}},
		},
		{
			name:    "missing id",
			reg:     ActivityRegistry{Activities: []Activity{{TaskType: "x.a"}}},
			wantErr: "has no id",
		},
		{
			name:    "duplicate task type",
			reg:     ActivityRegistry{Activities: []Activity{{ID: "a", TaskType: "x"}, {ID: "b", TaskType: "x"}}},
			wantErr: "duplicate taskType",
		},
		{
			name:    "bad timeout",
			reg:     ActivityRegistry{Activities: []Activity{{ID: "a", TaskType: "x", Timeout: "soon"}}},
			wantErr: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMissing(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{{ID: "a", TaskType: "x.a"}}}
	assert.Equal(t, []string{"x.b", "x.c"}, reg.Missing("x.c", "x.a", "x.b"))
	assert.Error(t, reg.EnsureRegistered("x.b"))
}

func TestLoadRegistry_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities":[{"id":"a"}]}`), 0o600))

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

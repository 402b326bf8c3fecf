package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidFilePermissions(t *testing.T) {
	tests := []struct {
		name    string
		mode    os.FileMode
		wantErr bool
	}{
		{"owner only", 0600, false},
		{"group read", 0640, false},
		{"world readable", 0644, true},
		{"world writable", 0666, true},
		{"everything", 0777, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := IsValidFilePermissions(tt.mode)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckSecretFile(t *testing.T) {
	dir := t.TempDir()

	private := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(private, []byte("{}"), 0600))
	assert.NoError(t, CheckSecretFile(private))

	public := filepath.Join(dir, "public.json")
	require.NoError(t, os.WriteFile(public, []byte("{}"), 0600))
	require.NoError(t, os.Chmod(public, 0644))
	assert.ErrorContains(t, CheckSecretFile(public), "too permissive")

	assert.ErrorContains(t, CheckSecretFile(filepath.Join(dir, "missing.json")), "does not exist")
	assert.ErrorContains(t, CheckSecretFile(dir), "not a regular file")
}

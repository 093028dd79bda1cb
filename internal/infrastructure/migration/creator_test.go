package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add receipts table", "add_receipts_table"},
		{"Add-Receipt-Void", "add_receipt_void"},
		{"ADD_RATE_REVISION", "add_rate_revision"},
		{"add__payable__index", "add_payable_index"},
		{"Visa Fees 2", "visa_fees_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.up.sql"), []byte("--"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.down.sql"), []byte("--"), 0644))

	mf, err := CreateMigration(dir, "add receipt void reason", "Track why receipts are voided")
	require.NoError(t, err)

	assert.Equal(t, "000002", mf.Version)
	assert.Equal(t, "000002_add_receipt_void_reason.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, "000002_add_receipt_void_reason.down.sql", filepath.Base(mf.DownPath))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add receipt void reason")
	assert.Contains(t, string(up), "Track why receipts are voided")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "rollback")

	next, err := CreateMigration(dir, "second", "")
	require.NoError(t, err)
	assert.Equal(t, "000003", next.Version)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		got, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("sorted base names", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000002_b.up.sql", "000002_b.down.sql",
			"000001_a.up.sql", "000001_a.down.sql",
			"README.md",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.up.sql"), 0755))

		got, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_a", "000002_b"}, got)
	})
}

func TestShippedMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	bases, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, bases)

	for _, base := range bases {
		_, err := os.Stat(filepath.Join(dir, base+".down.sql"))
		assert.NoError(t, err, "missing down migration for %s", base)
		_, ok := versionOf(base)
		assert.True(t, ok, "unnumbered migration %s", base)
		assert.False(t, strings.ContainsAny(base, " -"), base)
	}
}

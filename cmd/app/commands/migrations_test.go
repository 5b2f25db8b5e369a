package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("unsupported-driver", func(t *testing.T) {
		err := RunMigrations(logger, "sqlite", "file::memory:")
		require.ErrorIs(t, err, errUnsupportedDriver)
		require.Contains(t, err.Error(), `"sqlite"`)
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(logger, "postgres", "invalid-connection-string")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})
}

// Both dialects must ship the same versions, each with an up and a down file.
func TestMigrationSources_Pairs(t *testing.T) {
	versions := make(map[string][]string, len(migrationSources))

	for driver, source := range migrationSources {
		dir := filepath.Join("..", "..", "..", strings.TrimPrefix(source, "file://"))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err, driver)

		ups := map[string]bool{}
		downs := map[string]bool{}
		for _, entry := range entries {
			name := entry.Name()
			switch {
			case strings.HasSuffix(name, ".up.sql"):
				ups[strings.TrimSuffix(name, ".up.sql")] = true
			case strings.HasSuffix(name, ".down.sql"):
				downs[strings.TrimSuffix(name, ".down.sql")] = true
			}
		}

		require.NotEmpty(t, ups, driver)
		assert.Equal(t, ups, downs, driver)

		for name := range ups {
			versions[driver] = append(versions[driver], name)
		}
		slices.Sort(versions[driver])
	}

	assert.Equal(t, versions["postgres"], versions["mysql"])
}

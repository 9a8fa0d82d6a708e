package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var updateGolden = flag.Bool("update", false, "rewrite testdata/*.golden files")

// Golden compares output against testdata/<name>.golden. Run the tests with
// -update (or GOLDEN_UPDATE=1) to rewrite the file instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if *updateGolden || os.Getenv("GOLDEN_UPDATE") != "" {
		require.NoError(t, os.MkdirAll("testdata", 0755))
		require.NoError(t, os.WriteFile(path, got, 0644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "missing golden file %s, got:\n%s", path, got)

	// Golden files checked out on Windows may carry CRLF endings.
	assert.Equal(t, strings.ReplaceAll(string(want), "\r\n", "\n"), string(got), "output mismatch for %s", name)
}

package hephaistos_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/starsheet/internal/importer/hephaistos"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// envelope wraps testdata/document.json the way the JSON field set returns it.
func envelope(t *testing.T, id string, updated int64) []byte {
	t.Helper()
	data, err := json.Marshal(hephaistos.Envelope{
		ReadOnlyPermalinkID: id,
		Name:                " Kira ",
		JSON:                string(readFixture(t, "document.json")),
		Updated:             updated,
	})
	require.NoError(t, err)
	return data
}

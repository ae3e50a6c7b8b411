package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   graph/      (.flow dir)
	//     journal/
	//       deep/
	//   decoy/      (.flow file)
	base := t.TempDir()
	graph := filepath.Join(base, "graph")
	deep := filepath.Join(graph, "journal", "deep")
	decoy := filepath.Join(base, "decoy")

	require.NoError(t, os.MkdirAll(deep, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(graph, ".flow"), 0755))
	require.NoError(t, os.MkdirAll(decoy, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(decoy, ".flow"), nil, 0644))

	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"At Root", graph, graph},
		{"In Journal", filepath.Join(graph, "journal"), graph},
		{"Nested", deep, graph},
		{"Relative Dots", filepath.Join(deep, "..", ".."), graph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.start)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), filepath.Clean(got))
		})
	}

	t.Run("Marker File Ignored", func(t *testing.T) {
		_, err := FindRoot(decoy)
		assert.ErrorIs(t, err, ErrRootNotFound)
	})
}

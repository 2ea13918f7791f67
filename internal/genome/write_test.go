package genome

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	g, err := New([]string{"chr1", "empty", "chr2"}, []string{strings.Repeat("A", 61), "", "acgN"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	assert.Equal(t, ">chr1\n"+strings.Repeat("A", 60)+"\nA\n>empty\n>chr2\nacgN\n", buf.String())
}

func TestWriteFile_RoundTrip(t *testing.T) {
	g, err := New([]string{"chr2", "chr1"}, []string{strings.Repeat("ACGTn", 30), "TTTT"})
	require.NoError(t, err)

	for _, name := range []string{"out.fa", "out.fa.gz"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, WriteFile(path, g))

		got, err := LoadFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, g.Names(), got.Names())
		for _, c := range g.Names() {
			want, _ := g.Sequence(c)
			have, _ := got.Sequence(c)
			assert.Equal(t, want, have)
		}
	}
}

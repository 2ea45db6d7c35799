package generate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	err := WriteFiles([]OutputFile{
		{Path: filepath.Join(dir, "runtime.brs"), Content: []byte("sub main()\nend sub\n")},
		{Path: filepath.Join(dir, "messages", "Ping.brs"), Content: []byte("' ping\n")},
	}, log.NewLogfmtLogger(&logs))
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "messages", "Ping.brs"))
	require.NoError(t, err)
	assert.Equal(t, "' ping\n", string(got))
	assert.Contains(t, logs.String(), "msg=\"generated files\" count=2")
}

func TestMirror(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "out")
	dst := filepath.Join(root, "app", "source", "generated")
	require.NoError(t, WriteFiles([]OutputFile{
		{Path: filepath.Join(src, "runtime.brs"), Content: []byte("runtime")},
		{Path: filepath.Join(src, "messages", "Ping.brs"), Content: []byte("ping")},
	}, nil))
	stale := filepath.Join(dst, "messages", "Removed.brs")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	require.NoError(t, Mirror(src, dst, nil))

	got, err := os.ReadFile(filepath.Join(dst, "messages", "Ping.brs"))
	require.NoError(t, err)
	assert.Equal(t, "ping", string(got))
	assert.NoFileExists(t, stale)
}

func TestMirrorRejectsOverlap(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "app", "source", "generated")
	require.NoError(t, os.MkdirAll(src, 0o755))

	for _, dst := range []string{src, filepath.Join(root, "app")} {
		err := Mirror(src, dst, nil)
		require.ErrorContains(t, err, "contains output dir")
		assert.DirExists(t, src)
	}
}

package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDirExists(t *testing.T) {
	exists, err := DirExists("/invalid/path/videos")
	assert.NoError(t, err)
	assert.False(t, exists)

	dir := t.TempDir()
	exists, err = DirExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)

	videoFile := filepath.Join(dir, "push-up.mp4")
	require.NoError(t, os.WriteFile(videoFile, []byte("not really a video"), 0o600))
	exists, err = DirExists(videoFile)
	assert.Error(t, err)
	assert.False(t, exists)
}

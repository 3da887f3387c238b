package slidecrawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientationTag(t *testing.T) {
	tests := []struct {
		rotation int
		flip     bool
		tag      int
		ok       bool
	}{
		{0, false, 1, true},
		{0, true, 2, true},
		{90, false, 8, true},
		{90, true, 0, false},
		{180, false, 3, true},
		{180, true, 4, true},
		{270, false, 6, true},
		{270, true, 0, false},
		{-90, false, 6, true},
		{360, false, 1, true},
		{-180, true, 4, true},
		{450, false, 8, true},
	}
	for _, tt := range tests {
		tag, ok, err := OrientationTag(tt.rotation, tt.flip)
		require.NoError(t, err)
		assert.Equal(t, tt.ok, ok, "rotation %d flip %v", tt.rotation, tt.flip)
		assert.Equal(t, tt.tag, tag, "rotation %d flip %v", tt.rotation, tt.flip)
	}
}

func TestOrientationTagInvalid(t *testing.T) {
	for _, rotation := range []int{45, 1, -30} {
		_, ok, err := OrientationTag(rotation, false)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestQuarterTurns(t *testing.T) {
	tests := map[int]int{0: 0, 90: 1, 180: 2, 270: 3, -90: 3, -180: 2, -270: 1, 360: 0, 720: 0}
	for angle, want := range tests {
		got, err := quarterTurns(angle)
		require.NoError(t, err)
		assert.Equal(t, want, got, "angle %d", angle)
	}

	_, err := quarterTurns(30)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCopyFileRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("pixels"), 0o644))

	require.NoError(t, copyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	assert.ErrorIs(t, copyFile(src, dst), os.ErrExist)
}

func TestNextPathUnique(t *testing.T) {
	s := &Session{dir: t.TempDir()}
	a := s.nextPath("text", "jpg")
	b := s.nextPath("text", "jpg")
	assert.NotEqual(t, a, b)
	assert.Equal(t, ".jpg", filepath.Ext(a))
	assert.Regexp(t, `^text-1-[0-9a-f-]{36}\.jpg$`, filepath.Base(a))
	assert.Regexp(t, `^text-2-`, filepath.Base(b))

	assert.Regexp(t, `^ocr-3-[0-9a-f-]{36}$`, filepath.Base(s.nextPath("ocr", "")))
}

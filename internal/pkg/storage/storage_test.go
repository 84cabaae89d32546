package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "upload/ab/file.txt", strings.NewReader("hello")))

	rc, err := s.Get(ctx, "upload/ab/file.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "upload/ab/file.txt"))
	require.NoError(t, s.Delete(ctx, "upload/ab/file.txt"), "deleting twice is fine")

	_, err = s.Get(ctx, "upload/ab/file.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"", "..", "../secret", "a/../../secret", "/etc/passwd"} {
		err := s.Save(ctx, p, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestGenerateThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	for x := 0; x < 400; x++ {
		for y := 0; y < 100; y++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := NewImageProcessor().GenerateThumbnail(&buf, 200, 200)
	require.NoError(t, err)

	thumb, err := imaging.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 200, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())

	_, err = NewImageProcessor().GenerateThumbnail(strings.NewReader("not an image"), 200, 200)
	assert.Error(t, err)
}

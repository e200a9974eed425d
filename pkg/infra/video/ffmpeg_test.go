package video

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestSplitPNGStream(t *testing.T) {
	a := encodePNG(t, 2, 2)
	b := encodePNG(t, 3, 1)

	chunks, err := splitPNGStream(append(append([]byte{}, a...), b...))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, a, chunks[0])
	assert.Equal(t, b, chunks[1])

	chunks, err = splitPNGStream(nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitPNGStream_Malformed(t *testing.T) {
	a := encodePNG(t, 2, 2)

	_, err := splitPNGStream(a[:len(a)-6])
	assert.Error(t, err)

	_, err = splitPNGStream([]byte("garbage"))
	assert.Error(t, err)
}

func TestSelectFilter(t *testing.T) {
	assert.Equal(t, `select='eq(n\,0)+eq(n\,4)+eq(n\,9)'`, selectFilter([]int{0, 4, 9}))
}

func TestParseFrameCount(t *testing.T) {
	total, err := parseFrameCount([]byte("240\n"))
	require.NoError(t, err)
	assert.Equal(t, 240, total)

	total, err = parseFrameCount([]byte("96,\n96,\n"))
	require.NoError(t, err)
	assert.Equal(t, 96, total)

	_, err = parseFrameCount([]byte("N/A"))
	assert.ErrorIs(t, err, moderation.ErrDecode)
}

func TestFFmpegDecoder_Defaults(t *testing.T) {
	d := NewFFmpegDecoder("", "")
	assert.Equal(t, "ffmpeg", d.FFmpegPath)
	assert.Equal(t, "ffprobe", d.FFprobePath)
}

func TestFFmpegDecoder_MalformedVideo(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
	path := filepath.Join(t.TempDir(), "broken.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not a video"), 0o600))

	_, err := NewFFmpegDecoder("", "").FrameCount(context.Background(), path)
	assert.ErrorIs(t, err, moderation.ErrDecode)
}

func TestFFmpegDecoder_SyntheticVideo(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
	path := filepath.Join(t.TempDir(), "clip.mp4")
	gen := exec.Command("ffmpeg", "-v", "error", "-f", "lavfi", "-i", "testsrc=size=32x32:rate=10:duration=2",
		"-pix_fmt", "yuv420p", path)
	if err := gen.Run(); err != nil {
		t.Skipf("cannot generate test video: %v", err)
	}

	d := NewFFmpegDecoder("", "")
	total, err := d.FrameCount(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 20, total)

	frames, err := d.Frames(context.Background(), path, SampleIndices(total, 5))
	require.NoError(t, err)
	require.Len(t, frames, 5)
	assert.Equal(t, 32, frames[0].Bounds().Dx())
}

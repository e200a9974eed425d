package video

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// FFmpegDecoder shells out to ffprobe for counting and ffmpeg for extraction.
type FFmpegDecoder struct {
	FFmpegPath  string
	FFprobePath string
}

func NewFFmpegDecoder(ffmpegPath, ffprobePath string) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegDecoder{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// FrameCount decodes the first video stream and counts its frames, the same
// numbering the select filter in Frames uses.
func (d *FFmpegDecoder) FrameCount(ctx context.Context, path string) (int, error) {
	out, err := run(ctx, d.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=nb_read_frames",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return 0, err
	}
	return parseFrameCount(out)
}

func parseFrameCount(out []byte) (int, error) {
	// Some containers print one line per program.
	field := strings.TrimSpace(strings.SplitN(strings.TrimSpace(string(out)), "\n", 2)[0])
	field = strings.TrimSuffix(field, ",")
	total, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%w: unreadable frame count %q", moderation.ErrDecode, field)
	}
	return total, nil
}

func (d *FFmpegDecoder) Frames(ctx context.Context, path string, indices []int) ([]image.Image, error) {
	if len(indices) == 0 {
		return nil, nil
	}
	out, err := run(ctx, d.FFmpegPath,
		"-v", "error",
		"-i", path,
		"-vf", selectFilter(indices),
		"-fps_mode", "passthrough",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	)
	if err != nil {
		return nil, err
	}

	chunks, err := splitPNGStream(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", moderation.ErrDecode, err)
	}
	frames := make([]image.Image, 0, len(chunks))
	for _, chunk := range chunks {
		img, err := png.Decode(bytes.NewReader(chunk))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", moderation.ErrDecode, err)
		}
		frames = append(frames, img)
	}
	return frames, nil
}

func selectFilter(indices []int) string {
	terms := make([]string, len(indices))
	for i, idx := range indices {
		terms[i] = `eq(n\,` + strconv.Itoa(idx) + `)`
	}
	return "select='" + strings.Join(terms, "+") + "'"
}

func run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec // binary path comes from config
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s: %s", moderation.ErrDecode, bin, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s: %w", bin, err)
	}
	return stdout.Bytes(), nil
}

// splitPNGStream cuts the output of image2pipe into individual PNG files by
// walking the chunk layout up to each IEND.
func splitPNGStream(data []byte) ([][]byte, error) {
	var images [][]byte
	for len(data) > 0 {
		if !bytes.HasPrefix(data, pngSignature) {
			return nil, errors.New("missing png signature")
		}
		pos := len(pngSignature)
		for {
			if pos+8 > len(data) {
				return nil, errors.New("truncated png stream")
			}
			length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
			kind := string(data[pos+4 : pos+8])
			pos += 12 + length
			if pos > len(data) {
				return nil, errors.New("truncated png chunk")
			}
			if kind == "IEND" {
				break
			}
		}
		images = append(images, data[:pos])
		data = data[pos:]
	}
	return images, nil
}

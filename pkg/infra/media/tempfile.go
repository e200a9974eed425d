package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/sirupsen/logrus"
)

const videoSuffix = ".mp4"

var unsafeTagChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// TempFile is a request scoped copy of a video on local disk.
type TempFile struct {
	Path   string
	Size   int64
	Digest string // hex SHA-256 of the content

	logger *logrus.Logger
}

// Remove deletes the file. Failures are logged and otherwise ignored.
func (t *TempFile) Remove() {
	if t == nil || t.Path == "" {
		return
	}
	if err := os.Remove(t.Path); err != nil && !os.IsNotExist(err) && t.logger != nil {
		t.logger.WithError(err).WithField("path", t.Path).Warn("failed to remove temp file")
	}
}

// SaveUpload copies a multipart upload into a temp file.
func (f *Fetcher) SaveUpload(fh *multipart.FileHeader, tag string) (*TempFile, error) {
	if fh == nil {
		return nil, moderation.ErrNoVideoSource
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %v", moderation.ErrDecode, err)
	}
	defer src.Close()

	tmp, err := f.writeTemp(tag, src)
	if err != nil {
		return nil, fmt.Errorf("%w: store upload: %v", moderation.ErrDecode, err)
	}
	return tmp, nil
}

func (f *Fetcher) writeTemp(tag string, r io.Reader) (*TempFile, error) {
	pattern := "mediaguard-*" + videoSuffix
	if tag = unsafeTagChars.ReplaceAllString(tag, ""); tag != "" {
		pattern = "mediaguard-" + tag + "-*" + videoSuffix
	}

	file, err := os.CreateTemp(f.cfg.TempDir, pattern)
	if err != nil {
		return nil, err
	}
	tmp := &TempFile{Path: filepath.Clean(file.Name()), logger: f.logger}

	hash := sha256.New()
	n, copyErr := io.Copy(io.MultiWriter(file, hash), r)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		tmp.Remove()
		if copyErr != nil {
			return nil, copyErr
		}
		return nil, closeErr
	}

	tmp.Size = n
	tmp.Digest = hex.EncodeToString(hash.Sum(nil))
	return tmp, nil
}

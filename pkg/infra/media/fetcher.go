package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	DefaultImageTimeout  = 10 * time.Second
	DefaultVideoTimeout  = 15 * time.Second
	DefaultMaxImageBytes = 20 << 20
	DefaultMaxVideoBytes = 200 << 20

	// DefaultBufferSize is how much of a response is read into memory before
	// the rest is streamed from the connection.
	DefaultBufferSize = 1 << 20
)

type Config struct {
	ImageTimeout  time.Duration
	VideoTimeout  time.Duration
	MaxImageBytes int64
	MaxVideoBytes int64
	TempDir       string
	UserAgent     string
}

func (c *Config) defaults() {
	if c.ImageTimeout <= 0 {
		c.ImageTimeout = DefaultImageTimeout
	}
	if c.VideoTimeout <= 0 {
		c.VideoTimeout = DefaultVideoTimeout
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = DefaultMaxImageBytes
	}
	if c.MaxVideoBytes <= 0 {
		c.MaxVideoBytes = DefaultMaxVideoBytes
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
}

// NewHTTPClient builds the client media is fetched with. Bodies are streamed
// and decompressed as they are read, so MaxImageBytes and MaxVideoBytes bound
// memory rather than the response size.
func NewHTTPClient(cfg Config) *httpx.FastHTTPClient {
	cfg.defaults()
	return httpx.NewFastHTTPClient(
		httpx.WithTimeout(cfg.VideoTimeout),
		httpx.WithStreamResponseBody(true),
		httpx.WithMaxResponseBodySize(DefaultBufferSize),
		httpx.WithMaxDecodedBodySize(max(cfg.MaxImageBytes, cfg.MaxVideoBytes)),
		httpx.WithUserAgent(cfg.UserAgent),
	)
}

// Fetcher retrieves caller media over HTTP and stages videos on disk.
type Fetcher struct {
	client httpx.Client
	cfg    Config
	logger *logrus.Logger
}

func NewFetcher(client httpx.Client, cfg Config, logger *logrus.Logger) *Fetcher {
	cfg.defaults()
	return &Fetcher{client: client, cfg: cfg, logger: logger}
}

// FetchImage downloads the raw bytes behind imageURL.
func (f *Fetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.ImageTimeout)
	defer cancel()

	resp, err := f.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, f.cfg.MaxImageBytes)
	if err != nil {
		if errors.Is(err, httpx.ErrBodyTooLarge) {
			err = errTooLarge
		}
		return nil, fmt.Errorf("%w: %v", moderation.ErrFetch, err)
	}
	return data, nil
}

// DownloadVideo streams the video behind videoURL into a temp file. The
// caller owns the returned file and must Remove it.
func (f *Fetcher) DownloadVideo(ctx context.Context, videoURL, tag string) (*TempFile, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.VideoTimeout)
	defer cancel()

	resp, err := f.get(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	tmp, err := f.writeTemp(tag, io.LimitReader(resp.Body, f.cfg.MaxVideoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", moderation.ErrFetch, err)
	}
	if tmp.Size > f.cfg.MaxVideoBytes {
		tmp.Remove()
		return nil, fmt.Errorf("%w: video exceeds %d bytes", moderation.ErrFetch, f.cfg.MaxVideoBytes)
	}
	return tmp, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", moderation.ErrFetch, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", moderation.ErrFetch, err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)

	resp, err := f.client.Do(req) //nolint:gosec // URL is caller supplied
	if err != nil {
		return nil, fmt.Errorf("%w: %v", moderation.ErrFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned status %d", moderation.ErrFetch, u.Host, resp.StatusCode)
	}
	return resp, nil
}

var errTooLarge = errors.New("body exceeds size limit")

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, errTooLarge
	}
	return data, nil
}

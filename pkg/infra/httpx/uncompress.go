package httpx

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// AcceptEncoding lists every coding NewDecoder understands.
const AcceptEncoding = "gzip, br, zstd, deflate"

// NewDecoder wraps r so that reading it undoes the codings listed in a
// Content-Encoding value, last applied first. Decoding happens as the caller
// reads. When maxSize is positive, decoded output beyond maxSize bytes fails
// with ErrBodyTooLarge. The bool reports whether any coding was undone.
func NewDecoder(contentEncoding string, r io.Reader, maxSize int64) (io.ReadCloser, bool, error) {
	if strings.TrimSpace(contentEncoding) == "" {
		return io.NopCloser(r), false, nil
	}

	var closers []io.Closer
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	codings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		var (
			next   io.Reader
			closer io.Closer
			err    error
		)
		switch coding {
		case "", "identity", "compress":
			continue
		case "br":
			next = brotli.NewReader(r)
		case "gzip", "x-gzip":
			var gr *gzip.Reader
			gr, err = gzip.NewReader(r)
			next, closer = gr, gr
		case "zstd":
			var dec *zstd.Decoder
			dec, err = zstd.NewReader(r)
			if err == nil {
				rc := dec.IOReadCloser()
				next, closer = rc, rc
			}
		case "deflate":
			var rc io.ReadCloser
			rc, err = newDeflateReader(r)
			next, closer = rc, rc
		default:
			closeAll()
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", codings[i])
		}
		if err != nil {
			closeAll()
			return nil, false, fmt.Errorf("decode %s: %w", coding, err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		r = &codingReader{coding: coding, r: next}
		changed = true
	}

	if changed && maxSize > 0 {
		r = &boundedReader{r: r, remaining: maxSize}
	}
	return &decoder{Reader: r, close: closeAll}, changed, nil
}

// newDeflateReader accepts both zlib-wrapped and raw deflate streams.
func newDeflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err == nil && isZlibHeader(header) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

func isZlibHeader(h []byte) bool {
	return h[0]&0x0f == 8 && (uint16(h[0])<<8|uint16(h[1]))%31 == 0
}

type decoder struct {
	io.Reader
	close func()
}

func (d *decoder) Close() error {
	d.close()
	return nil
}

type codingReader struct {
	coding string
	r      io.Reader
}

func (c *codingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, ErrBodyTooLarge) {
		err = fmt.Errorf("decode %s: %w", c.coding, err)
	}
	return n, err
}

// boundedReader fails instead of truncating once remaining is spent.
type boundedReader struct {
	r         io.Reader
	remaining int64
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		var one [1]byte
		n, err := b.r.Read(one[:])
		if n > 0 {
			return 0, ErrBodyTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.r.Read(p)
	b.remaining -= int64(n)
	return n, err
}

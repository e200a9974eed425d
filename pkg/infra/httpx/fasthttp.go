package httpx

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout             = 30 * time.Second
	DefaultMaxConnsPerHost     = 256
	DefaultMaxIdleConnDuration = 10 * time.Second
	DefaultMaxRedirects        = 5
	DefaultMaxResponseBodySize = 64 << 20
)

// ErrBodyTooLarge is returned when a buffered response exceeds
// MaxResponseBodySize or a decoded body exceeds MaxDecodedBodySize.
var ErrBodyTooLarge = errors.New("response body too large")

type FastHTTPClientOptions struct {
	Timeout             time.Duration
	MaxConnsPerHost     int
	MaxIdleConnDuration time.Duration
	MaxRedirects        int
	MaxResponseBodySize int
	MaxDecodedBodySize  int64
	StreamResponseBody  bool
	InsecureSkipVerify  bool
	UserAgent           string
}

type FastHTTPClientOption func(*FastHTTPClientOptions)

func WithTimeout(timeout time.Duration) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.Timeout = timeout
	}
}

func WithMaxConnsPerHost(max int) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxConnsPerHost = max
	}
}

// WithMaxRedirects sets how many redirects are followed. Zero disables them.
func WithMaxRedirects(max int) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxRedirects = max
	}
}

func WithMaxResponseBodySize(size int) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxResponseBodySize = size
	}
}

// WithMaxDecodedBodySize bounds the body after Content-Encoding is undone.
func WithMaxDecodedBodySize(size int64) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxDecodedBodySize = size
	}
}

// WithStreamResponseBody reads bodies from the connection as the caller
// consumes them. MaxResponseBodySize then only sizes the in-memory prefix.
func WithStreamResponseBody(stream bool) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.StreamResponseBody = stream
	}
}

func WithInsecureSkipVerify(skip bool) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.InsecureSkipVerify = skip
	}
}

func WithUserAgent(userAgent string) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.UserAgent = userAgent
	}
}

// FastHTTPClient adapts fasthttp to the net/http shaped Client interface.
// The request context deadline, when earlier than the configured timeout,
// bounds the whole exchange including redirects. Response bodies hold a
// pooled fasthttp response and must be closed.
type FastHTTPClient struct {
	client         *fasthttp.Client
	timeout        time.Duration
	maxRedirects   int
	maxDecodedSize int64
	userAgent      string
}

func NewFastHTTPClient(opts ...FastHTTPClientOption) *FastHTTPClient {
	options := &FastHTTPClientOptions{
		Timeout:             DefaultTimeout,
		MaxConnsPerHost:     DefaultMaxConnsPerHost,
		MaxIdleConnDuration: DefaultMaxIdleConnDuration,
		MaxRedirects:        DefaultMaxRedirects,
		MaxResponseBodySize: DefaultMaxResponseBodySize,
		MaxDecodedBodySize:  DefaultMaxResponseBodySize,
	}
	for _, opt := range opts {
		opt(options)
	}

	client := &fasthttp.Client{
		MaxConnsPerHost:     options.MaxConnsPerHost,
		MaxIdleConnDuration: options.MaxIdleConnDuration,
		MaxResponseBodySize: options.MaxResponseBodySize,
		StreamResponseBody:  options.StreamResponseBody,
		ReadTimeout:         options.Timeout,
		WriteTimeout:        options.Timeout,
	}
	if options.InsecureSkipVerify {
		client.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // intentionally configurable
		}
	}

	return &FastHTTPClient{
		client:         client,
		timeout:        options.Timeout,
		maxRedirects:   options.MaxRedirects,
		maxDecodedSize: options.MaxDecodedBodySize,
		userAgent:      options.UserAgent,
	}
}

func (c *FastHTTPClient) Do(req *http.Request) (*http.Response, error) {
	timeout, err := c.effectiveTimeout(req.Context())
	if err != nil {
		return nil, err
	}

	fastReq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(fastReq)
	if err := c.buildRequest(req, fastReq); err != nil {
		return nil, err
	}
	fastReq.SetTimeout(timeout)

	fastResp := fasthttp.AcquireResponse()
	if c.maxRedirects > 0 && isIdempotent(req.Method) {
		err = c.client.DoRedirects(fastReq, fastResp, c.maxRedirects)
	} else {
		err = c.client.Do(fastReq, fastResp)
	}
	if err != nil {
		fasthttp.ReleaseResponse(fastResp)
		if errors.Is(err, fasthttp.ErrBodyTooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}

	resp, err := c.buildResponse(req, fastResp)
	if err != nil {
		fasthttp.ReleaseResponse(fastResp)
		return nil, err
	}
	return resp, nil
}

func (c *FastHTTPClient) effectiveTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout, nil
}

func (c *FastHTTPClient) buildRequest(req *http.Request, fastReq *fasthttp.Request) error {
	if req.URL == nil {
		return errors.New("request has no URL")
	}
	fastReq.SetRequestURI(req.URL.String())
	fastReq.Header.SetMethod(req.Method)
	if req.Host != "" {
		fastReq.Header.SetHost(req.Host)
	}
	for key, values := range req.Header {
		for i, value := range values {
			if i == 0 {
				fastReq.Header.Set(key, value)
				continue
			}
			fastReq.Header.Add(key, value)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		fastReq.Header.SetUserAgent(c.userAgent)
	}

	if req.Body == nil {
		return nil
	}
	defer req.Body.Close()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	fastReq.SetBodyRaw(body)
	return nil
}

// buildResponse wraps the pooled fasthttp response in an http.Response whose
// body undoes any Content-Encoding while it is read. Closing the body returns
// the response, and its connection when streamed, to fasthttp.
func (c *FastHTTPClient) buildResponse(req *http.Request, fastResp *fasthttp.Response) (*http.Response, error) {
	var (
		raw           io.Reader
		contentLength int64 = -1
	)
	if stream := fastResp.BodyStream(); stream != nil {
		raw = &contextReader{ctx: req.Context(), r: stream}
	} else {
		body := fastResp.Body()
		raw = bytes.NewReader(body)
		contentLength = int64(len(body))
	}

	contentEncoding := string(fastResp.Header.Peek(fasthttp.HeaderContentEncoding))
	decoded, changed, err := NewDecoder(contentEncoding, raw, c.maxDecodedSize)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	fastResp.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})
	if changed {
		headers.Del("Content-Encoding")
		headers.Del("Content-Length")
		contentLength = -1
	}

	status := fastResp.StatusCode()
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers,
		Body:          &pooledBody{ReadCloser: decoded, resp: fastResp},
		ContentLength: contentLength,
		Request:       req,
	}, nil
}

type pooledBody struct {
	io.ReadCloser
	resp *fasthttp.Response
	once sync.Once
	err  error
}

func (b *pooledBody) Close() error {
	b.once.Do(func() {
		b.err = b.ReadCloser.Close()
		if err := b.resp.CloseBodyStream(); err != nil && b.err == nil {
			b.err = err
		}
		fasthttp.ReleaseResponse(b.resp)
	})
	return b.err
}

// contextReader stops a streamed body once the request context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func isIdempotent(method string) bool {
	return method == "" || method == http.MethodGet || method == http.MethodHead
}

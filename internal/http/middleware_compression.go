package httpx

import (
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	// Level is a compress/gzip level; invalid values use gzip.DefaultCompression.
	Level int
	// MinSize is the smallest body that gets compressed. Zero compresses everything.
	MinSize int
	Logger  *slog.Logger
}

var compressibleTypes = map[string]bool{
	"application/javascript":    true,
	"application/json":          true,
	"application/manifest+json": true,
	"application/xml":           true,
	"image/svg+xml":             true,
}

type gzipPool struct {
	pool sync.Pool
}

func newGzipPool(level int) *gzipPool {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	p := &gzipPool{}
	p.pool.New = func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, level)
		return w
	}
	return p
}

func (p *gzipPool) get(dst io.Writer) *gzip.Writer {
	w, _ := p.pool.Get().(*gzip.Writer)
	w.Reset(dst)
	return w
}

func (p *gzipPool) put(w *gzip.Writer) {
	w.Reset(io.Discard)
	p.pool.Put(w)
}

// Compression returns a middleware that gzips compressible responses for
// clients that accept it. Event streams, bodiless statuses, HEAD requests and
// responses that already carry a Content-Encoding pass through untouched.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	pool := newGzipPool(cfg.Level)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Accept-Encoding")
			if !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipResponseWriter{
				ResponseWriter: w,
				ctx:            r.Context(),
				pool:           pool,
				minSize:        cfg.MinSize,
				logger:         logger,
			}
			defer gzw.finish()
			next.ServeHTTP(gzw, r)
		})
	}
}

// acceptsGzip reports whether an Accept-Encoding header allows gzip. An
// explicit gzip entry wins over a "*" wildcard; q=0 disables either.
func acceptsGzip(header string) bool {
	wildcard := false
	for part := range strings.SplitSeq(header, ",") {
		coding, params, _ := strings.Cut(part, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		ok := qualityOf(params) > 0
		if coding == "gzip" {
			return ok
		}
		wildcard = ok
	}
	return wildcard
}

func qualityOf(params string) float64 {
	for param := range strings.SplitSeq(params, ";") {
		k, v, found := strings.Cut(param, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(k), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return q
	}
	return 1
}

func isCompressible(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mt == "text/event-stream" {
		return false
	}
	return strings.HasPrefix(mt, "text/") || compressibleTypes[mt]
}

func bodyAllowed(status int) bool {
	return status >= http.StatusOK && status != http.StatusNoContent && status != http.StatusNotModified
}

type gzipMode int

const (
	// modePending waits for a Content-Type before choosing.
	modePending gzipMode = iota
	// modeBuffer holds the body until it reaches MinSize.
	modeBuffer
	modeGzip
	modePlain
)

// gzipResponseWriter decides between plain and gzip output once it knows the
// status and Content-Type, holding back headers until then.
type gzipResponseWriter struct {
	http.ResponseWriter
	ctx     context.Context
	pool    *gzipPool
	minSize int
	logger  *slog.Logger

	status int
	mode   gzipMode
	buf    []byte
	gz     *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	if w.Header().Get("Content-Type") == "" && bodyAllowed(status) {
		return
	}
	w.decide()
}

func (w *gzipResponseWriter) decide() {
	h := w.Header()
	if !bodyAllowed(w.status) || h.Get("Content-Encoding") != "" || !isCompressible(h.Get("Content-Type")) {
		w.mode = modePlain
		w.ResponseWriter.WriteHeader(w.status)
		return
	}
	if len(w.buf) < w.minSize {
		w.mode = modeBuffer
		return
	}
	_ = w.startGzip()
}

func (w *gzipResponseWriter) startGzip() error {
	w.mode = modeGzip
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(w.status)
	w.gz = w.pool.get(w.ResponseWriter)
	if len(w.buf) == 0 {
		return nil
	}
	_, err := w.gz.Write(w.buf)
	w.buf = nil
	return err
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	switch w.mode {
	case modePending:
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.decide()
		return w.Write(b)
	case modeBuffer:
		w.buf = append(w.buf, b...)
		if len(w.buf) < w.minSize {
			return len(b), nil
		}
		return len(b), w.startGzip()
	case modeGzip:
		return w.gz.Write(b)
	default:
		return w.ResponseWriter.Write(b)
	}
}

// Flush commits a pending or buffered response so streaming handlers make progress.
func (w *gzipResponseWriter) Flush() {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	switch w.mode {
	case modePending:
		w.decide()
	case modeBuffer:
		if err := w.startGzip(); err != nil {
			w.logger.ErrorContext(w.ctx, "writing buffered gzip body failed", "error", err)
		}
	}
	if w.gz != nil {
		if err := w.gz.Flush(); err != nil {
			w.logger.ErrorContext(w.ctx, "flushing gzip writer failed", "error", err)
		}
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *gzipResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *gzipResponseWriter) finish() {
	switch w.mode {
	case modePending:
		if w.status != 0 {
			w.mode = modePlain
			w.ResponseWriter.WriteHeader(w.status)
		}
	case modeBuffer:
		// The body never reached MinSize.
		w.mode = modePlain
		w.ResponseWriter.WriteHeader(w.status)
		if _, err := w.ResponseWriter.Write(w.buf); err != nil {
			w.logger.ErrorContext(w.ctx, "writing uncompressed body failed", "error", err)
		}
		w.buf = nil
	case modeGzip:
		if err := w.gz.Close(); err != nil {
			w.logger.ErrorContext(w.ctx, "closing gzip writer failed", "error", err)
		}
		w.pool.put(w.gz)
		w.gz = nil
	}
}

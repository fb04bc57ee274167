package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// withGZip decodes gzip request bodies and compresses responses for clients
// that accept gzip. Compression starts on the first body write, so bodiless
// responses such as 204 stay bodiless.
func withGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		supportsGzip := strings.Contains(req.Header.Get("Accept-Encoding"), "gzip")
		isGzipRequest := strings.Contains(req.Header.Get("Content-Encoding"), "gzip")

		if isGzipRequest && req.Body != nil {
			gzipReader := gzipReaderPool.Get().(*gzip.Reader)
			if err := gzipReader.Reset(req.Body); err != nil {
				gzipReaderPool.Put(gzipReader)
				http.Error(w, "Invalid gzip data", http.StatusBadRequest)
				return
			}

			req.Body = &wrappedReadCloser{
				Reader: gzipReader,
				OnClose: func() {
					gzipReader.Close()
					gzipReaderPool.Put(gzipReader)
				},
			}
			req.Header.Del("Content-Encoding")
			req.ContentLength = -1
		}

		if !supportsGzip {
			next.ServeHTTP(w, req)
			return
		}

		gzipRW := &gzipResponseWriter{ResponseWriter: w}
		defer gzipRW.Close()

		next.ServeHTTP(gzipRW, req)
	})
}

type wrappedReadCloser struct {
	io.Reader
	OnClose func()
}

func (w *wrappedReadCloser) Close() error {
	if w.OnClose != nil {
		w.OnClose()
	}
	return nil
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gzipWriter  *gzip.Writer
	status      int
	wroteHeader bool
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true

	if bodyAllowed(statusCode) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if !bodyAllowed(w.status) {
		return w.ResponseWriter.Write(data)
	}
	if w.gzipWriter == nil {
		w.gzipWriter = gzipWriterPool.Get().(*gzip.Writer)
		w.gzipWriter.Reset(w.ResponseWriter)
	}
	return w.gzipWriter.Write(data)
}

// Close flushes the gzip stream. A response that announced gzip but wrote
// no body still gets a valid empty stream.
func (w *gzipResponseWriter) Close() error {
	if w.gzipWriter == nil {
		if !w.wroteHeader || !bodyAllowed(w.status) {
			return nil
		}
		w.gzipWriter = gzipWriterPool.Get().(*gzip.Writer)
		w.gzipWriter.Reset(w.ResponseWriter)
	}

	err := w.gzipWriter.Close()
	gzipWriterPool.Put(w.gzipWriter)
	w.gzipWriter = nil
	return err
}

func bodyAllowed(status int) bool {
	return status != http.StatusNoContent && status != http.StatusNotModified && status >= http.StatusOK
}

package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// ContentCacheControl is applied to successfully rendered content pages.
const ContentCacheControl = "public, max-age=600"

// PrivateCacheControl keeps preview responses (drafts) out of every cache.
const PrivateCacheControl = "private, no-store"

// WriteCached writes a rendered 200 body with a weak content ETag. A matching
// If-None-Match short-circuits to 304 without a body. Non-200 statuses are written
// with no-store so transient failures are never cached downstream.
func WriteCached(w http.ResponseWriter, r *http.Request, status int, body []byte, lastModified time.Time) {
	h := w.Header()
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "text/html; charset=utf-8")
	}
	if status != http.StatusOK {
		h.Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}

	sum := sha256.Sum256(body)
	etag := `W/"` + hex.EncodeToString(sum[:16]) + `"`
	h.Set("Cache-Control", ContentCacheControl)
	h.Set("ETag", etag)
	if !lastModified.IsZero() {
		h.Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
	}
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

// WritePrivate writes a rendered body that must never be stored, without validators.
func WritePrivate(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	h := w.Header()
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "text/html; charset=utf-8")
	}
	h.Set("Cache-Control", PrivateCacheControl)
	h.Del("ETag")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

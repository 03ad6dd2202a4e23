package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// Key derives the cache key for a request from its path and query plus the
// content negotiation headers. Requests that differ only in other headers
// share a key.
func Key(r *http.Request) string {
	h := sha256.New()
	h.Write([]byte(r.URL.RequestURI()))
	h.Write([]byte{'|'})
	h.Write([]byte(r.Header.Get("Accept")))
	h.Write([]byte{'|'})
	h.Write([]byte(r.Header.Get("Accept-Encoding")))
	return hex.EncodeToString(h.Sum(nil))
}

package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
)

// KeyExtractor maps a request to the bucket it is charged against. An empty
// key means the request cannot be attributed.
type KeyExtractor func(*http.Request) string

// ProxiedIPKeyExtractor prefers the first X-Forwarded-For hop, then
// X-Real-IP, then the socket address.
func ProxiedIPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return IPKeyExtractor(r)
}

// IPKeyExtractor returns the socket address, ignoring proxy headers.
func IPKeyExtractor(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserIDKeyExtractor returns the authenticated principal's user id, or "".
func UserIDKeyExtractor(r *http.Request) string {
	if p := PrincipalFromContext(r.Context()); p != nil {
		return p.UserID
	}
	return ""
}

// FirstKey returns the first non-empty key.
func FirstKey(extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		for _, fn := range extractors {
			if key := fn(r); key != "" {
				return key
			}
		}
		return ""
	}
}

// CompositeKeyExtractor joins the non-empty keys with sep, e.g.
// "192.0.2.1:a@x.com".
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, fn := range extractors {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// JSONFieldKeyExtractor reads a top-level string field of a JSON body,
// lowercased. The body is put back for the handler.
func JSONFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		if err != nil {
			return ""
		}

		var fields map[string]json.RawMessage
		if json.Unmarshal(body, &fields) != nil {
			return ""
		}
		var v string
		if json.Unmarshal(fields[field], &v) != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(v))
	}
}

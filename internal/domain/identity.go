package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
)

// trackingParams are query parameters stripped during URL canonicalization.
// Boards append these per-session, so they must not feed the dedup key.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"refid":        true,
	"trk":          true,
	"tracking_id":  true,
	"from":         true,
}

// ComputeIdentity derives the dedup key for a listing.
// When the source exposes a stable external ID, the key is (source, external_id).
// Otherwise it falls back to a content hash of the canonical URL, title, and
// company name, normalized so whitespace and casing noise cannot change it.
func ComputeIdentity(source, externalID, rawURL, title, companyName string) string {
	h := sha1.New()
	if externalID != "" {
		h.Write([]byte(source))
		h.Write([]byte{0})
		h.Write([]byte(externalID))
	} else {
		h.Write([]byte(CanonicalURL(rawURL)))
		h.Write([]byte{0})
		h.Write([]byte(normalizeText(title)))
		h.Write([]byte{0})
		h.Write([]byte(normalizeText(companyName)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalURL normalizes a listing URL for identity purposes: lowercases
// scheme and host, drops the fragment, and strips tracking query parameters.
// Unparseable URLs are returned trimmed as-is rather than rejected.
func CanonicalURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for param := range q {
		if trackingParams[strings.ToLower(param)] {
			q.Del(param)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimSuffix(u.String(), "?")
}

// normalizeText lowercases and collapses whitespace for hashing.
func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Package contentid derives stable content identifiers from TikTok video
// URLs. The same video must map to the same ID no matter how often the
// link is resent, since the ID is the idempotency key for ingestion.
package contentid

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?(?:tiktok\.com/@[\w.-]+/video/\d+|vm\.tiktok\.com/\w+|tiktok\.com/t/\w+)`)
	videoIDPattern = regexp.MustCompile(`video/(\d+)`)
)

// IsVideoURL reports whether the string looks like a TikTok video link
// (full, vm short link, or /t/ short link).
func IsVideoURL(url string) bool {
	return urlPattern.MatchString(strings.TrimSpace(url))
}

// FromURL derives the stable content ID for a video URL. Full links carry
// the numeric video ID; short links have no embedded ID, so a digest of
// the normalized URL is used instead, which still maps resends of the
// same short link to the same ID.
func FromURL(url string) string {
	if m := videoIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return digest(normalize(url))
}

// normalize strips scheme, www prefix, and trailing slash. The path is
// left untouched: short-link codes are case-sensitive.
func normalize(url string) string {
	s := strings.TrimSpace(url)
	for _, prefix := range []string{"https://", "http://", "www."} {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
		}
	}
	return strings.TrimSuffix(s, "/")
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

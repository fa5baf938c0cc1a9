package ats

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"ats-catalog/core/utils"

	"golang.org/x/text/unicode/norm"
)

// CleanText applies NFKC normalization and collapses whitespace.
func CleanText(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// FallbackID derives a stable id for records the source does not identify.
func FallbackID(basis string) string {
	sum := md5.Sum([]byte(basis))
	return hex.EncodeToString(sum[:])
}

// RemoteType returns "remote" when the location text starts with it.
func RemoteType(location string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(location)), "remote") {
		return "remote"
	}
	return ""
}

// Payload encodes raw for storage. Encoding failures yield nil.
func Payload(raw RawJob) json.RawMessage {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return b
}

// JoinNonEmpty joins the non-blank parts with sep, dropping exact duplicates.
func JoinNonEmpty(sep string, parts ...string) string {
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, sep)
}

// TextList renders a string or a list of strings as one comma separated value.
func TextList(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, utils.ToString(item))
		}
		return JoinNonEmpty(", ", parts...)
	default:
		return CleanText(utils.ToString(t))
	}
}

// EpochISO renders unix seconds as an ISO-8601 UTC timestamp. Zero or invalid input yields "".
func EpochISO(v any) string {
	sec := utils.ToInt(v)
	if sec <= 0 {
		return ""
	}
	return time.Unix(int64(sec), 0).UTC().Format("2006-01-02T15:04:05Z")
}

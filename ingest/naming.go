package ingest

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Extensions accepted for upload, all lowercase.
var allowedExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true,
	"mp4": true, "mov": true, "mkv": true, "avi": true, "webm": true,
}

var videoExtensions = map[string]bool{
	"mp4": true, "mov": true, "mkv": true, "avi": true, "webm": true,
}

var mimeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"webm": "video/webm",
}

// ExtAllowed reports whether a lowercase extension is on the allow-list.
func ExtAllowed(ext string) bool {
	return allowedExtensions[ext]
}

// KindForExt classifies an extension as "video" or "image".
func KindForExt(ext string) string {
	if videoExtensions[ext] {
		return "video"
	}
	return "image"
}

// MimeForExt returns a best-effort MIME type for an extension. The value is
// informational only and defaults to application/octet-stream.
func MimeForExt(ext string) string {
	if m, ok := mimeByExt[ext]; ok {
		return m
	}
	return "application/octet-stream"
}

// SanitizeFilename strips directory components and every character outside
// [A-Za-z0-9._-] from an untrusted client filename. When nothing survives,
// a generated placeholder basename is returned. Extension extraction must
// happen after this so embedded separators cannot smuggle a path or a
// spoofed trailing extension.
func SanitizeFilename(raw string) string {
	// Keep only the basename, accepting both separator styles from clients.
	if i := strings.LastIndexAny(raw, `/\`); i >= 0 {
		raw = raw[i+1:]
	}
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if strings.Trim(out, ".") == "" {
		return "upload-" + randomSuffix()
	}
	return out
}

// ExtOf returns the lowercase extension of a sanitized filename, without
// the dot, or "" when the name has none.
func ExtOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// StoredName derives the collision-resistant name a payload is persisted
// under: <device>-<YYYYMMDD-HHMMSS>-<random hex>.<ext>. The timestamp is
// UTC and the 128-bit random suffix makes same-second collisions for one
// device negligible; no existence pre-check is performed.
func StoredName(deviceID, ext string, now time.Time) string {
	device := SanitizeFilename(deviceID)
	ts := now.UTC().Format("20060102-150405")
	return device + "-" + ts + "-" + randomSuffix() + "." + ext
}

func randomSuffix() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

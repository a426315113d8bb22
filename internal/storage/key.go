package storage

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// ObjectKey builds "<prefix>/<unix-nano>-<sanitized file name>".
func ObjectKey(prefix, fileName string, now time.Time) string {
	return prefix + "/" + strconv.FormatInt(now.UnixNano(), 10) + "-" + SanitizeFileName(fileName)
}

func SanitizeFileName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}

	var sb strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteRune('-')
				lastDash = true
			}
		}
	}

	sanitized := strings.Trim(sb.String(), "-.")
	if sanitized == "" {
		return "file"
	}
	return sanitized
}

package format

import (
	"fmt"
	"strings"
	"time"
)

// wordsPerMinute is the reading speed used for reading-time estimates.
const wordsPerMinute = 200

// FmtDate formats time in a locale-friendly short form. Zero times render as "".
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ja":
		return t.Format("2006-01-02")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// ISODate formats t for <time datetime>.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// ReadingTime estimates minutes to read the given word count.
// Example: ReadingTime(450) => "3 min read"
func ReadingTime(words int) string {
	if words <= 0 {
		return ""
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}

// Thousands inserts comma separators. Example: Thousands(12345) => "12,345"
func Thousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

package youtube

import (
	"fmt"
	"regexp"
	"strings"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^?&]+)`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([^&]+)`),
}

var validVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID pulls the video id out of the common youtube url shapes
// (watch?v=, youtu.be/, embed/). Returns "" if none match.
func ExtractVideoID(url string) string {
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(url); len(match) > 1 && match[1] != "" {
			return match[1]
		}
	}

	return ""
}

// IsValidVideoID reports whether id is exactly 11 characters from the
// youtube id alphabet.
func IsValidVideoID(id string) bool {
	return validVideoID.MatchString(id)
}

// IsVideoURL is a cheap heuristic for detecting a bare youtube link in
// free-form text.
func IsVideoURL(s string) bool {
	return strings.Contains(s, "youtube.com/") || strings.Contains(s, "youtu.be/")
}

func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", videoID)
}

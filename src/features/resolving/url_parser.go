package resolving

import (
	"regexp"
	"strings"
)

var (
	youtubeURL = regexp.MustCompile(`^(https?://)?(www\.|m\.|music\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/(watch\?v=|embed/|v/|shorts/|.+[?&]v=)?([^&=%\?]{11})`)

	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[?&]v=([0-9A-Za-z_-]{11})`),
		regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
		regexp.MustCompile(`/(?:embed|v|shorts)/([0-9A-Za-z_-]{11})`),
	}

	bareVideoID = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// IsYouTubeURL reports whether s looks like a link to a YouTube video.
func IsYouTubeURL(s string) bool {
	return youtubeURL.MatchString(strings.TrimSpace(s))
}

// ExtractVideoID returns the 11-character video id of a YouTube URL, or "" if there is none.
func ExtractVideoID(s string) string {
	s = strings.TrimSpace(s)
	if !IsYouTubeURL(s) {
		return ""
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// IsVideoID reports whether s has the shape of a bare YouTube video id.
func IsVideoID(s string) bool {
	return bareVideoID.MatchString(s)
}

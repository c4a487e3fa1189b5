package files

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/unidecode"
)

const maxFilenameLength = 100

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	repeatedUnderscores  = regexp.MustCompile(`_{2,}`)
)

// SafeFilename turns a song title into an ASCII file name safe on every platform.
// The extension, if any, is appended untouched. Empty titles fall back to "audio".
func SafeFilename(title, ext string) string {
	name := unidecode.Unidecode(title)
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), "_")
	name = repeatedUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
		for !utf8.ValidString(name) {
			name = name[:len(name)-1]
		}
	}
	if name == "" {
		name = "audio"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + ext
}

package resolving

import (
	"errors"
	"fmt"

	"github.com/contre95/tubequeue/src/music"
)

var (
	ErrEmptyQuery = errors.New("empty query")
	ErrNoResults  = errors.New("no results found")
	ErrNotAudio   = errors.New("downloaded file is not audio")
)

// TooLongError is returned when a song exceeds the configured maximum duration.
type TooLongError struct {
	Duration int
	Max      int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("song is too long (%s), maximum is %s",
		music.FormatDuration(e.Duration), music.FormatDuration(e.Max))
}

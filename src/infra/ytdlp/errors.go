package ytdlp

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("video not found")
	ErrRateLimited  = errors.New("rate limited by youtube")
	ErrTimeout      = errors.New("yt-dlp timed out")
	ErrNotInstalled = errors.New("yt-dlp is not installed")
)

// Error describes a failed yt-dlp invocation.
type Error struct {
	Op     string // search, info or download
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("yt-dlp %s %q: %v", e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// retryable reports whether a failed call may succeed when repeated.
func retryable(err error) bool {
	return !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNotInstalled)
}

package resolving

import (
	"context"

	"github.com/contre95/tubequeue/src/music"
)

// MediaResolver is the external media-extraction backend.
type MediaResolver interface {
	Search(ctx context.Context, query string, limit int) ([]music.Song, error)
	Info(ctx context.Context, urlOrID string) (music.Song, error)
	Download(ctx context.Context, id, dir string) (string, error)
}

// SongCache keeps song metadata so repeated lookups skip the backend.
// GetSong returns nil, nil on a miss.
type SongCache interface {
	GetSong(ctx context.Context, id string) (*music.Song, error)
	PutSong(ctx context.Context, song music.Song) error
}

// Workspace hands out scratch directories for downloads.
type Workspace interface {
	NewDir() (string, error)
	Rename(path, title string) (string, error)
	Release(dir string) error
}

// AudioIdentifier checks that a downloaded file really is audio.
type AudioIdentifier interface {
	Identify(path string) (string, error)
}

// TagWriter writes song metadata and cover art into an audio file.
type TagWriter interface {
	WriteFileTags(ctx context.Context, path string, song music.Song, cover []byte) error
}

// CoverFetcher turns a thumbnail url into a small JPEG. It returns nil when covers are disabled.
type CoverFetcher interface {
	Cover(ctx context.Context, url string) ([]byte, error)
}

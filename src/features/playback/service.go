package playback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/contre95/tubequeue/src/features/queue"
	"github.com/contre95/tubequeue/src/features/resolving"
	"github.com/contre95/tubequeue/src/music"
)

// maxConcurrentDownloads bounds how many yt-dlp downloads run at once.
const maxConcurrentDownloads = 3

// ErrNothingPlaying is returned when a conversation has no current song.
var ErrNothingPlaying = errors.New("nothing is playing")

// History stores what was queued in each conversation.
type History interface {
	RecordPlay(ctx context.Context, chatID int64, song music.Song) error
	RecentPlays(ctx context.Context, chatID int64, limit int) ([]music.Play, error)
}

// PlayResult is the outcome of a successful play request.
type PlayResult struct {
	Song     music.Song
	Position int // 0-based, 0 means the song is now playing
}

// NowPlaying reports whether the song became the current entry.
func (r PlayResult) NowPlaying() bool {
	return r.Position == 0
}

// SkipResult is the outcome of a successful skip.
type SkipResult struct {
	Skipped music.Song
	Next    music.Song
	HasNext bool
}

// Service composes the queue with the media resolver for the chat front ends.
type Service struct {
	queue     *queue.Service
	resolver  *resolving.Service
	history   History
	downloads chan struct{}
}

// NewService creates a new playback service. history may be nil.
func NewService(queueService *queue.Service, resolver *resolving.Service, history History) *Service {
	return &Service{
		queue:     queueService,
		resolver:  resolver,
		history:   history,
		downloads: make(chan struct{}, maxConcurrentDownloads),
	}
}

// Allow reports whether userID is within the request rate limit.
func (s *Service) Allow(userID int64) bool {
	return s.resolver.Allow(userID)
}

// Search returns up to limit candidate songs for query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]music.Song, error) {
	return s.resolver.Search(ctx, query, limit)
}

// Play resolves query and appends the song to the conversation queue.
func (s *Service) Play(ctx context.Context, chatID int64, query string) (PlayResult, error) {
	song, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return PlayResult{}, err
	}
	return s.enqueue(ctx, chatID, song)
}

// Enqueue appends the song with the given video id, used by search result buttons.
func (s *Service) Enqueue(ctx context.Context, chatID int64, videoID string) (PlayResult, error) {
	song, err := s.resolver.ResolveID(ctx, videoID)
	if err != nil {
		return PlayResult{}, err
	}
	return s.enqueue(ctx, chatID, song)
}

func (s *Service) enqueue(ctx context.Context, chatID int64, song music.Song) (PlayResult, error) {
	if err := song.Validate(); err != nil {
		return PlayResult{Song: song}, err
	}
	if err := s.resolver.CheckDuration(song); err != nil {
		return PlayResult{Song: song}, err
	}
	pos, err := s.queue.Add(chatID, song)
	if err != nil {
		return PlayResult{Song: song}, err
	}
	if s.history != nil {
		if err := s.history.RecordPlay(ctx, chatID, song); err != nil {
			slog.Warn("Failed to record play", "chat_id", chatID, "id", song.ID, "error", err)
		}
	}
	return PlayResult{Song: song, Position: pos}, nil
}

// Download resolves query and fetches its audio without touching any queue.
func (s *Service) Download(ctx context.Context, query string) (*resolving.Audio, error) {
	song, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.CheckDuration(song); err != nil {
		return nil, err
	}
	return s.Fetch(ctx, song)
}

// FetchCurrent fetches the audio of the song now playing in chatID.
func (s *Service) FetchCurrent(ctx context.Context, chatID int64) (*resolving.Audio, error) {
	song, ok := s.queue.Current(chatID)
	if !ok {
		return nil, ErrNothingPlaying
	}
	return s.Fetch(ctx, song)
}

// Fetch downloads the audio of song, waiting for a free download slot.
func (s *Service) Fetch(ctx context.Context, song music.Song) (*resolving.Audio, error) {
	select {
	case s.downloads <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.downloads }()
	return s.resolver.FetchAudio(ctx, song)
}

// Skip advances the conversation queue. It returns false when nothing was playing.
func (s *Service) Skip(chatID int64) (SkipResult, bool) {
	skipped, ok := s.queue.Skip(chatID)
	if !ok {
		return SkipResult{}, false
	}
	next, hasNext := s.queue.Current(chatID)
	return SkipResult{Skipped: skipped, Next: next, HasNext: hasNext}, true
}

// Stop clears the conversation queue. It returns false when nothing was playing.
func (s *Service) Stop(chatID int64) bool {
	if _, ok := s.queue.Current(chatID); !ok {
		return false
	}
	s.queue.Clear(chatID)
	return true
}

// History returns the latest songs queued in chatID, newest first.
func (s *Service) History(ctx context.Context, chatID int64, limit int) ([]music.Play, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.RecentPlays(ctx, chatID, limit)
}

// audioReader streams a downloaded file and removes it once closed.
type audioReader struct {
	file  *os.File
	audio *resolving.Audio
}

func (r *audioReader) Read(p []byte) (int, error) {
	return r.file.Read(p)
}

func (r *audioReader) Close() error {
	err := r.file.Close()
	r.audio.Cleanup()
	return err
}

// StreamCurrent returns a reader over the audio of the song now playing and its content type.
// Closing the reader deletes the downloaded file.
func (s *Service) StreamCurrent(ctx context.Context, chatID int64) (io.ReadCloser, string, error) {
	audio, err := s.FetchCurrent(ctx, chatID)
	if err != nil {
		return nil, "", err
	}
	file, err := os.Open(audio.Path)
	if err != nil {
		audio.Cleanup()
		return nil, "", err
	}
	return &audioReader{file: file, audio: audio}, contentType(audio.Path), nil
}

func contentType(path string) string {
	switch ext := filepath.Ext(path); ext {
	case ".m4a":
		return "audio/mp4"
	case ".webm":
		return "audio/webm"
	case ".opus", ".ogg":
		return "audio/ogg"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "audio/mpeg"
	}
}

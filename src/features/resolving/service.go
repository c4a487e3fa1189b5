package resolving

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/contre95/tubequeue/src/features/config"
	"github.com/contre95/tubequeue/src/features/metrics"
	"github.com/contre95/tubequeue/src/infra/tag"
	"github.com/contre95/tubequeue/src/music"
)

// Audio is a downloaded, tagged audio file ready to be sent.
type Audio struct {
	Song   music.Song
	Path   string
	Format string
	Cover  []byte // JPEG thumbnail, nil when unavailable

	dir     string
	release func(string) error
}

// Filename returns the base name of the audio file.
func (a *Audio) Filename() string {
	return filepath.Base(a.Path)
}

// Cleanup removes the downloaded files. Failures are logged and otherwise ignored.
func (a *Audio) Cleanup() {
	if a == nil || a.release == nil {
		return
	}
	if err := a.release(a.dir); err != nil {
		slog.Warn("Failed to clean up downloaded audio", "dir", a.dir, "error", err)
	}
}

// Service resolves user queries into songs and materializes their audio.
type Service struct {
	config     *config.Manager
	resolver   MediaResolver
	cache      SongCache
	workspace  Workspace
	identifier AudioIdentifier
	tagger     TagWriter
	covers     CoverFetcher
	limiter    *UserLimiter
	metrics    *metrics.Collector
}

// NewService creates a new resolving service. cache, tagger and covers may be nil.
func NewService(cfg *config.Manager, resolver MediaResolver, cache SongCache, workspace Workspace,
	identifier AudioIdentifier, tagger TagWriter, covers CoverFetcher, collector *metrics.Collector) *Service {
	return &Service{
		config:     cfg,
		resolver:   resolver,
		cache:      cache,
		workspace:  workspace,
		identifier: identifier,
		tagger:     tagger,
		covers:     covers,
		limiter:    NewUserLimiter(func() int { return cfg.Get().Media.MaxRequestsPerMinute }),
		metrics:    collector,
	}
}

// Allow reports whether userID is within the per-minute request limit.
func (s *Service) Allow(userID int64) bool {
	return s.limiter.Allow(userID)
}

// Resolve turns a YouTube URL or a free-text query into a single song.
func (s *Service) Resolve(ctx context.Context, query string) (music.Song, error) {
	defer s.metrics.ObserveResolve("resolve", time.Now())

	query = strings.TrimSpace(query)
	if query == "" {
		return music.Song{}, ErrEmptyQuery
	}
	if IsYouTubeURL(query) {
		if id := ExtractVideoID(query); id != "" {
			return s.ResolveID(ctx, id)
		}
		return s.resolver.Info(ctx, query)
	}

	songs, err := s.resolver.Search(ctx, query, 1)
	if err != nil {
		return music.Song{}, err
	}
	if len(songs) == 0 {
		return music.Song{}, fmt.Errorf("%w for %q", ErrNoResults, query)
	}
	s.store(ctx, songs[0])
	return songs[0], nil
}

// ResolveID returns the song with the given video id, from the cache when possible.
func (s *Service) ResolveID(ctx context.Context, id string) (music.Song, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSong(ctx, id)
		if err != nil {
			slog.Warn("Song cache lookup failed", "id", id, "error", err)
		} else if cached != nil {
			slog.Debug("Song cache hit", "id", id)
			return *cached, nil
		}
	}

	song, err := s.resolver.Info(ctx, id)
	if err != nil {
		return music.Song{}, err
	}
	s.store(ctx, song)
	return song, nil
}

// Search returns up to limit songs for query. A limit <= 0 uses media.search_results.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]music.Song, error) {
	defer s.metrics.ObserveResolve("search", time.Now())

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = s.config.Get().Media.SearchResults
	}
	songs, err := s.resolver.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	for _, song := range songs {
		s.store(ctx, song)
	}
	slog.Info("Search finished", "query", query, "results", len(songs))
	return songs, nil
}

// CheckDuration rejects songs longer than media.max_duration_seconds.
func (s *Service) CheckDuration(song music.Song) error {
	maxDuration := s.config.Get().Media.MaxDurationSeconds
	if maxDuration > 0 && song.Duration > maxDuration {
		return &TooLongError{Duration: song.Duration, Max: maxDuration}
	}
	return nil
}

// FetchAudio downloads the audio of song into its own directory, verifies it and tags it.
// The caller owns the result and must call Cleanup once the file has been sent.
func (s *Service) FetchAudio(ctx context.Context, song music.Song) (*Audio, error) {
	defer s.metrics.ObserveResolve("download", time.Now())

	dir, err := s.workspace.NewDir()
	if err != nil {
		s.metrics.Download("error")
		return nil, err
	}
	audio := &Audio{Song: song, dir: dir, release: s.workspace.Release}

	path, err := s.resolver.Download(ctx, song.ID, dir)
	if err != nil {
		audio.Cleanup()
		s.metrics.Download("error")
		return nil, err
	}

	format, err := s.identifier.Identify(path)
	if err != nil {
		audio.Cleanup()
		s.metrics.Download("invalid")
		return nil, fmt.Errorf("%w: %v", ErrNotAudio, err)
	}
	audio.Format = format

	if s.covers != nil {
		cover, err := s.covers.Cover(ctx, song.Thumbnail)
		if err != nil {
			slog.Warn("Failed to prepare thumbnail", "id", song.ID, "error", err)
		}
		audio.Cover = cover
	}

	if s.tagger != nil {
		err := s.tagger.WriteFileTags(ctx, path, song, audio.Cover)
		switch {
		case errors.Is(err, tag.ErrUnsupported):
			slog.Debug("Skipping tags for container", "id", song.ID, "format", format)
		case err != nil:
			slog.Warn("Failed to tag audio", "id", song.ID, "error", err)
		}
	}

	if renamed, err := s.workspace.Rename(path, song.Title); err != nil {
		slog.Warn("Keeping download name", "path", path, "error", err)
	} else {
		path = renamed
	}
	audio.Path = path

	if info, err := os.Stat(path); err == nil {
		slog.Info("Audio ready", "id", song.ID, "format", format, "bytes", info.Size())
	}
	s.metrics.Download("ok")
	return audio, nil
}

func (s *Service) store(ctx context.Context, song music.Song) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutSong(ctx, song); err != nil {
		slog.Warn("Failed to cache song", "id", song.ID, "error", err)
	}
}

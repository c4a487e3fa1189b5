package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/contre95/tubequeue/src/features/config"
	"github.com/contre95/tubequeue/src/infra/retry"
	"github.com/contre95/tubequeue/src/music"
)

const (
	bestAudioFormat = "bestaudio[ext=m4a]/bestaudio/best"
	defaultTimeout  = 2 * time.Minute
)

var audioExtensions = []string{".m4a", ".webm", ".mp3", ".aac", ".opus", ".flac", ".ogg"}

// runner executes yt-dlp and returns its stdout and stderr.
type runner func(ctx context.Context, bin string, args []string) (stdout, stderr []byte, err error)

// Client talks to YouTube through the yt-dlp executable.
type Client struct {
	cfg *config.Manager
	run runner
}

// NewClient creates a yt-dlp client. Settings are read on every call so reloads apply.
func NewClient(cfg *config.Manager) *Client {
	return &Client{cfg: cfg, run: execRunner}
}

// Search returns up to limit results for a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]music.Song, error) {
	if limit <= 0 {
		limit = 1
	}
	target := fmt.Sprintf("ytsearch%d:%s", limit, query)
	out, err := c.call(ctx, "search", query, "--flat-playlist", "-J", target)
	if err != nil {
		return nil, err
	}
	songs, err := parsePlaylist(out)
	if err != nil {
		return nil, &Error{Op: "search", Target: query, Err: err}
	}

	// Flat entries may lack the duration, which the length limit depends on.
	for i, s := range songs {
		if s.Duration > 0 {
			continue
		}
		full, err := c.Info(ctx, s.ID)
		if err != nil {
			slog.Warn("Could not complete search result", "id", s.ID, "error", err)
			continue
		}
		songs[i] = full
	}
	slog.Debug("yt-dlp search finished", "query", query, "results", len(songs))
	return songs, nil
}

// Info returns the metadata of a single video, given its url or 11-character id.
func (c *Client) Info(ctx context.Context, urlOrID string) (music.Song, error) {
	target := urlOrID
	if !strings.HasPrefix(target, "http") {
		target = music.Song{ID: urlOrID}.WatchURL()
	}
	out, err := c.call(ctx, "info", urlOrID, "-J", "--no-playlist", target)
	if err != nil {
		return music.Song{}, err
	}
	song, err := parseVideo(out)
	if err != nil {
		return music.Song{}, &Error{Op: "info", Target: urlOrID, Err: err}
	}
	return song, nil
}

// Download fetches the audio track of a video into dir and returns the file path.
func (c *Client) Download(ctx context.Context, id, dir string) (string, error) {
	args := []string{
		"-f", bestAudioFormat,
		"-o", filepath.Join(dir, id+".%(ext)s"),
		"--restrict-filenames",
		"--no-playlist",
		"--no-simulate",
		"--print", "after_move:filepath",
	}
	if format := c.cfg.Get().Media.AudioFormat; format != "" {
		args = append(args, "-x", "--audio-format", format)
	}
	args = append(args, music.Song{ID: id}.WatchURL())

	out, err := c.call(ctx, "download", id, args...)
	if err != nil {
		return "", err
	}
	if path := printedPath(out); path != "" {
		return path, nil
	}
	path, err := findAudio(dir, id)
	if err != nil {
		return "", &Error{Op: "download", Target: id, Err: err}
	}
	return path, nil
}

// Version returns the installed yt-dlp version.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, _, err := c.run(ctx, c.cfg.Get().Ytdlp.Path, []string{"--version"})
	if err != nil {
		return "", &Error{Op: "version", Err: ErrNotInstalled}
	}
	return strings.TrimSpace(string(stdout)), nil
}

func (c *Client) call(ctx context.Context, op, target string, args ...string) ([]byte, error) {
	yc := c.cfg.Get().Ytdlp
	timeout := yc.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	full := append(c.baseArgs(yc), args...)

	var out []byte
	err := retry.Do(ctx, retry.DefaultPolicy(yc.MaxRetries), retryable, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		stdout, stderr, err := c.run(callCtx, yc.Path, full)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cause := classify(callCtx, err, stderr)
			slog.Debug("yt-dlp call failed", "op", op, "target", target, "error", cause)
			return &Error{Op: op, Target: target, Err: cause}
		}
		out = stdout
		return nil
	})
	return out, err
}

func (c *Client) baseArgs(yc config.Ytdlp) []string {
	args := []string{"--no-warnings", "--quiet", "--no-progress"}
	if yc.Proxy != "" {
		args = append(args, "--proxy", yc.Proxy)
	}
	if yc.Cookies != "" {
		args = append(args, "--cookies", yc.Cookies)
	}
	return args
}

func classify(ctx context.Context, err error, stderr []byte) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return ErrNotInstalled
	}
	msg := strings.ToLower(string(stderr))
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "rate limit"):
		return ErrRateLimited
	case strings.Contains(msg, "video unavailable") || strings.Contains(msg, "private video") ||
		strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "is not a valid url"):
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(stderr)))
}

// printedPath returns the last non-empty line yt-dlp printed, which is the final file path.
func printedPath(out []byte) string {
	var last string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			last = line
		}
	}
	return last
}

func findAudio(dir, id string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.Contains(name, id) {
			continue
		}
		if slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(name))) {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("no audio file for %s in %s", id, dir)
}

func execRunner(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

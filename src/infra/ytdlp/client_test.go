package ytdlp

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/contre95/tubequeue/src/features/config"
)

const sampleInfo = `{
  "id": "dQw4w9WgXcQ",
  "title": "Never Gonna Give You Up",
  "duration": 212.0,
  "uploader": "Rick Astley",
  "view_count": 1500000000,
  "webpage_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
  "thumbnails": [
    {"url": "https://i.ytimg.com/small.jpg", "width": 120, "height": 90},
    {"url": "https://i.ytimg.com/large.jpg", "width": 1280, "height": 720}
  ]
}`

const sampleSearch = `{
  "_type": "playlist",
  "entries": [
    {"id": "aaaaaaaaaaa", "title": "First", "duration": 100, "channel": "Chan", "url": "https://www.youtube.com/watch?v=aaaaaaaaaaa"},
    {"id": "bbbbbbbbbbb", "title": "Second", "url": "bbbbbbbbbbb"},
    {"title": "broken entry"}
  ]
}`

type call struct {
	bin  string
	args []string
}

type fakeRunner struct {
	calls   []call
	respond func(args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) run(_ context.Context, bin string, args []string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{bin: bin, args: slices.Clone(args)})
	return f.respond(args)
}

func newTestClient(t *testing.T, mutate func(*config.Config), respond func([]string) ([]byte, []byte, error)) (*Client, *fakeRunner) {
	t.Helper()
	cfg := &config.Config{
		Ytdlp: config.Ytdlp{Path: "/usr/bin/yt-dlp", MaxRetries: 0},
	}
	if mutate != nil {
		mutate(cfg)
	}
	fr := &fakeRunner{respond: respond}
	c := NewClient(config.NewManager(cfg))
	c.run = fr.run
	return c, fr
}

func TestInfo_ParsesMetadata(t *testing.T) {
	c, fr := newTestClient(t, nil, func([]string) ([]byte, []byte, error) {
		return []byte(sampleInfo), nil, nil
	})

	song, err := c.Info(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if song.Title != "Never Gonna Give You Up" || song.Duration != 212 || song.Uploader != "Rick Astley" {
		t.Errorf("Info() = %+v", song)
	}
	if song.Thumbnail != "https://i.ytimg.com/large.jpg" {
		t.Errorf("Thumbnail = %q, want largest", song.Thumbnail)
	}
	args := fr.calls[0].args
	if got := args[len(args)-1]; got != "https://youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("bare id expanded to %q", got)
	}
	if fr.calls[0].bin != "/usr/bin/yt-dlp" {
		t.Errorf("binary = %q", fr.calls[0].bin)
	}
}

func TestSearch_CompletesMissingDurations(t *testing.T) {
	c, fr := newTestClient(t, nil, func(args []string) ([]byte, []byte, error) {
		if slices.Contains(args, "--flat-playlist") {
			return []byte(sampleSearch), nil, nil
		}
		return []byte(`{"id": "bbbbbbbbbbb", "title": "Second (full)", "duration": 61}`), nil, nil
	})

	songs, err := c.Search(context.Background(), "never gonna", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("len(songs) = %d, want 2", len(songs))
	}
	if songs[0].Uploader != "Chan" {
		t.Errorf("Uploader = %q, want channel fallback", songs[0].Uploader)
	}
	if songs[1].Duration != 61 || songs[1].Title != "Second (full)" {
		t.Errorf("second result not completed: %+v", songs[1])
	}
	if !slices.Contains(fr.calls[0].args, "ytsearch5:never gonna") {
		t.Errorf("search args = %v", fr.calls[0].args)
	}
	if len(fr.calls) != 2 {
		t.Errorf("calls = %d, want 2 (search + one info)", len(fr.calls))
	}
}

func TestDownload_Args(t *testing.T) {
	dir := t.TempDir()
	c, fr := newTestClient(t, func(cfg *config.Config) {
		cfg.Media.AudioFormat = "mp3"
		cfg.Ytdlp.Proxy = "socks5://proxy:1080"
		cfg.Ytdlp.Cookies = "/tmp/cookies.txt"
	}, func([]string) ([]byte, []byte, error) {
		return []byte("\n" + filepath.Join(dir, "abcdefghijk.mp3") + "\n"), nil, nil
	})

	path, err := c.Download(context.Background(), "abcdefghijk", dir)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if path != filepath.Join(dir, "abcdefghijk.mp3") {
		t.Errorf("path = %q", path)
	}
	joined := strings.Join(fr.calls[0].args, " ")
	for _, want := range []string{
		"-f " + bestAudioFormat,
		"-x --audio-format mp3",
		"--proxy socks5://proxy:1080",
		"--cookies /tmp/cookies.txt",
		"-o " + filepath.Join(dir, "abcdefghijk.%(ext)s"),
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestDownload_FallsBackToDirectoryScan(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "abcdefghijk.webm"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, _ := newTestClient(t, nil, func([]string) ([]byte, []byte, error) { return nil, nil, nil })

	path, err := c.Download(context.Background(), "abcdefghijk", dir)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if filepath.Base(path) != "abcdefghijk.webm" {
		t.Errorf("path = %q", path)
	}
}

func TestCall_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		err    error
		want   error
	}{
		{"unavailable", "ERROR: [youtube] xyz: Video unavailable", errors.New("exit status 1"), ErrNotFound},
		{"rate limited", "ERROR: HTTP Error 429: Too Many Requests", errors.New("exit status 1"), ErrRateLimited},
		{"missing binary", "", exec.ErrNotFound, ErrNotInstalled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, nil, func([]string) ([]byte, []byte, error) {
				return nil, []byte(tt.stderr), tt.err
			})
			_, err := c.Info(context.Background(), "dQw4w9WgXcQ")
			if !errors.Is(err, tt.want) {
				t.Errorf("Info() error = %v, want %v", err, tt.want)
			}
			var yerr *Error
			if !errors.As(err, &yerr) || yerr.Op != "info" {
				t.Errorf("error %v is not an info *Error", err)
			}
		})
	}
}

func TestCall_DoesNotRetryNotFound(t *testing.T) {
	c, fr := newTestClient(t, func(cfg *config.Config) { cfg.Ytdlp.MaxRetries = 3 },
		func([]string) ([]byte, []byte, error) {
			return nil, []byte("ERROR: Private video"), errors.New("exit status 1")
		})
	if _, err := c.Info(context.Background(), "dQw4w9WgXcQ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Info() error = %v", err)
	}
	if len(fr.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(fr.calls))
	}
}

func TestParseVideo_EmptyID(t *testing.T) {
	if _, err := parseVideo([]byte(`{"title": "no id"}`)); !errors.Is(err, ErrNotFound) {
		t.Errorf("parseVideo() error = %v, want ErrNotFound", err)
	}
	if _, err := parseVideo([]byte(`not json`)); err == nil {
		t.Error("parseVideo() accepted invalid JSON")
	}
}

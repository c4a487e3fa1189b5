package tag

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/tubequeue/src/music"
)

// fakeMP3 is a handful of silent MPEG-1 Layer III frame headers, enough for id3v2 and dhowden/tag.
func fakeMP3() []byte {
	frame := append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)
	return bytes.Repeat(frame, 4)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWriteFileTags_MP3RoundTrip(t *testing.T) {
	path := writeFile(t, "dQw4w9WgXcQ.mp3", fakeMP3())
	song := music.Song{ID: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up", Uploader: "Rick Astley", Duration: 212}

	if err := NewTagWriter().WriteFileTags(context.Background(), path, song, nil); err != nil {
		t.Fatalf("WriteFileTags() error = %v", err)
	}

	reader := NewTagReader()
	meta, err := reader.ReadFileTags(path)
	if err != nil {
		t.Fatalf("ReadFileTags() error = %v", err)
	}
	if meta.Title != song.Title || meta.Artist != song.Uploader {
		t.Errorf("tags = %+v", meta)
	}
	if ft, err := reader.Identify(path); err != nil || ft != "MP3" {
		t.Errorf("Identify() = %q, %v; want MP3", ft, err)
	}
}

func TestWriteFileTags_Unsupported(t *testing.T) {
	path := writeFile(t, "clip.webm", []byte{0x1A, 0x45, 0xDF, 0xA3, 0, 0, 0, 0})
	err := NewTagWriter().WriteFileTags(context.Background(), path, music.Song{ID: "x", Title: "x"}, nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("WriteFileTags() error = %v, want ErrUnsupported", err)
	}
}

func TestIdentify(t *testing.T) {
	reader := NewTagReader()
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"webm", append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 32)...), "WEBM", false},
		{"bare mpeg", fakeMP3(), "MP3", false},
		{"m4a", append([]byte{0, 0, 0, 0x20, 'f', 't', 'y', 'p', 'M', '4', 'A', ' '}, make([]byte, 32)...), "M4A", false},
		{"text", bytes.Repeat([]byte("hello world "), 20), "", true},
		{"empty", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reader.Identify(writeFile(t, "f.bin", tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Identify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Identify() = %q, want %q", got, tt.want)
			}
		})
	}
}

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/contre95/tubequeue/src/music"
)

func newTestCache(t *testing.T) *SqliteSongCache {
	t.Helper()
	cache, err := NewSqliteSongCache(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSqliteSongCache() error = %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestSongCache_PutGet(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	got, err := cache.GetSong(ctx, "missing0000")
	if err != nil || got != nil {
		t.Fatalf("GetSong(missing) = %v, %v; want nil, nil", got, err)
	}

	song := music.Song{ID: "dQw4w9WgXcQ", Title: "Never Gonna", Duration: 212, Uploader: "Rick", ViewCount: 10}
	if err := cache.PutSong(ctx, song); err != nil {
		t.Fatalf("PutSong() error = %v", err)
	}
	song.Title = "Never Gonna Give You Up"
	if err := cache.PutSong(ctx, song); err != nil {
		t.Fatalf("PutSong() update error = %v", err)
	}

	got, err = cache.GetSong(ctx, song.ID)
	if err != nil {
		t.Fatalf("GetSong() error = %v", err)
	}
	if got == nil || *got != song {
		t.Errorf("GetSong() = %+v, want %+v", got, song)
	}
}

func TestSongCache_RecentPlays(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	a := music.Song{ID: "aaaaaaaaaaa", Title: "A", Duration: 60}
	b := music.Song{ID: "bbbbbbbbbbb", Title: "B", Duration: 90}
	for _, s := range []music.Song{a, b, a} {
		if err := cache.RecordPlay(ctx, 1, s); err != nil {
			t.Fatalf("RecordPlay() error = %v", err)
		}
	}
	if err := cache.RecordPlay(ctx, 2, b); err != nil {
		t.Fatal(err)
	}

	plays, err := cache.RecentPlays(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RecentPlays() error = %v", err)
	}
	if len(plays) != 2 {
		t.Fatalf("len(plays) = %d, want 2", len(plays))
	}
	if plays[0].Song.ID != a.ID || plays[1].Song.ID != b.ID {
		t.Errorf("order = %s, %s; want newest first", plays[0].Song.ID, plays[1].Song.ID)
	}
	if plays[0].ChatID != 1 || plays[0].PlayedAt.IsZero() {
		t.Errorf("play = %+v", plays[0])
	}

	other, err := cache.RecentPlays(ctx, 2, 10)
	if err != nil || len(other) != 1 {
		t.Errorf("RecentPlays(2) = %v, %v", other, err)
	}
}

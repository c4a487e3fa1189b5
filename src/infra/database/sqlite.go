package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/contre95/tubequeue/src/music"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// playedAtLayout has a fixed width so that timestamps sort as text.
const playedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SqliteSongCache keeps resolved song metadata and the play history in SQLite.
type SqliteSongCache struct {
	db *sql.DB
}

// NewSqliteSongCache opens (or creates) the database at path.
func NewSqliteSongCache(path string) (*SqliteSongCache, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// go-sqlite3 serializes writers anyway, a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("Song cache ready", "path", path)
	return &SqliteSongCache{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			duration INTEGER,
			uploader TEXT,
			url TEXT,
			thumbnail TEXT,
			view_count INTEGER,
			cached_at TEXT
		);

		CREATE TABLE IF NOT EXISTS plays (
			id TEXT PRIMARY KEY,
			chat_id INTEGER NOT NULL,
			song_id TEXT NOT NULL,
			played_at TEXT NOT NULL,
			FOREIGN KEY (song_id) REFERENCES songs(id)
		);

		CREATE INDEX IF NOT EXISTS idx_plays_chat ON plays(chat_id, played_at);
	`)
	return err
}

// GetSong returns the cached song with the given id, or nil if it was never cached.
func (d *SqliteSongCache) GetSong(ctx context.Context, id string) (*music.Song, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, title, duration, uploader, url, thumbnail, view_count
		FROM songs
		WHERE id = ?
	`, id)

	song := &music.Song{}
	var uploader, url, thumbnail sql.NullString
	var duration, views sql.NullInt64
	err := row.Scan(&song.ID, &song.Title, &duration, &uploader, &url, &thumbnail, &views)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	song.Duration = int(duration.Int64)
	song.Uploader = uploader.String
	song.URL = url.String
	song.Thumbnail = thumbnail.String
	song.ViewCount = views.Int64
	return song, nil
}

// PutSong inserts or refreshes a song.
func (d *SqliteSongCache) PutSong(ctx context.Context, song music.Song) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO songs (id, title, duration, uploader, url, thumbnail, view_count, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			duration = excluded.duration,
			uploader = excluded.uploader,
			url = excluded.url,
			thumbnail = excluded.thumbnail,
			view_count = excluded.view_count,
			cached_at = excluded.cached_at
	`, song.ID, song.Title, song.Duration, song.Uploader, song.URL, song.Thumbnail, song.ViewCount,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// RecordPlay stores that song was queued in chatID. The song is cached as well.
func (d *SqliteSongCache) RecordPlay(ctx context.Context, chatID int64, song music.Song) error {
	if err := d.PutSong(ctx, song); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO plays (id, chat_id, song_id, played_at) VALUES (?, ?, ?, ?)
	`, uuid.NewString(), chatID, song.ID, time.Now().UTC().Format(playedAtLayout))
	return err
}

// RecentPlays returns the latest plays of a conversation, newest first.
func (d *SqliteSongCache) RecentPlays(ctx context.Context, chatID int64, limit int) ([]music.Play, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT p.id, p.chat_id, p.played_at, s.id, s.title, s.duration, s.uploader, s.url, s.thumbnail, s.view_count
		FROM plays p
		JOIN songs s ON s.id = p.song_id
		WHERE p.chat_id = ?
		ORDER BY p.played_at DESC, p.rowid DESC
		LIMIT ?
	`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []music.Play
	for rows.Next() {
		var p music.Play
		var playedAt string
		var uploader, url, thumbnail sql.NullString
		var duration, views sql.NullInt64
		if err := rows.Scan(&p.ID, &p.ChatID, &playedAt, &p.Song.ID, &p.Song.Title, &duration,
			&uploader, &url, &thumbnail, &views); err != nil {
			return nil, err
		}
		p.PlayedAt, _ = time.Parse(playedAtLayout, playedAt)
		p.Song.Duration = int(duration.Int64)
		p.Song.Uploader = uploader.String
		p.Song.URL = url.String
		p.Song.Thumbnail = thumbnail.String
		p.Song.ViewCount = views.Int64
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

// Close closes the underlying database.
func (d *SqliteSongCache) Close() error {
	return d.db.Close()
}

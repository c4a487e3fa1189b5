package queue

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/contre95/tubequeue/src/music"
	"github.com/samber/lo"
)

// DefaultMaxSize is the per-conversation capacity used when none is configured.
const DefaultMaxSize = 50

// ErrQueueFull is returned by Add when the queue already holds its maximum number of songs.
var ErrQueueFull = errors.New("queue is full")

// QueueFullError carries the capacity that was hit. It matches ErrQueueFull with errors.Is.
type QueueFullError struct {
	Max int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("queue is full (max %d songs)", e.Max)
}

func (e *QueueFullError) Is(target error) bool {
	return target == ErrQueueFull
}

// Info is a read-only summary of the unplayed part of a queue.
type Info struct {
	TotalSongs    int         `json:"total_songs"`
	CurrentSong   *music.Song `json:"current_song"`
	TotalDuration int         `json:"total_duration"`
	IsEmpty       bool        `json:"is_empty"`
}

// Queue is the ordered playback sequence of one conversation.
// Entries before current are finished; Skip compacts them away.
type Queue struct {
	mu      sync.Mutex
	entries []music.Song
	current int
	maxSize int
}

// New creates an empty queue holding at most maxSize songs.
func New(maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Queue{maxSize: maxSize}
}

// Add appends a song and returns its position relative to the current song.
// Position 0 means the song is now playing.
func (q *Queue) Add(song music.Song) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= q.maxSize {
		return 0, &QueueFullError{Max: q.maxSize}
	}
	q.entries = append(q.entries, song)
	return len(q.entries) - q.current - 1, nil
}

// Current returns the song being played, if any.
func (q *Queue) Current() (music.Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.currentLocked()
}

func (q *Queue) currentLocked() (music.Song, bool) {
	if q.current >= len(q.entries) {
		return music.Song{}, false
	}
	return q.entries[q.current], true
}

// Skip finishes the current song and makes the next one current.
// It returns the skipped song, or false when nothing was playing.
func (q *Queue) Skip() (music.Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	skipped, ok := q.currentLocked()
	if !ok {
		return music.Song{}, false
	}
	q.current++
	// Drop finished entries so current is always 0 after a skip.
	q.entries = slices.Clone(q.entries[q.current:])
	q.current = 0
	return skipped, true
}

// List returns a copy of the unplayed songs, current song first.
func (q *Queue) List() []music.Song {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.listLocked()
}

func (q *Queue) listLocked() []music.Song {
	if q.current >= len(q.entries) {
		return []music.Song{}
	}
	return slices.Clone(q.entries[q.current:])
}

// Clear empties the queue. Calling it on an empty queue is a no-op.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.entries)
	q.entries = q.entries[:0]
	q.current = 0
}

// Remove deletes the song at the given position relative to the current song (0 = current).
func (q *Queue) Remove(index int) (music.Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actual := q.current + index
	if actual < 0 || actual >= len(q.entries) {
		return music.Song{}, false
	}
	removed := q.entries[actual]
	q.entries = slices.Delete(q.entries, actual, actual+1)
	if actual < q.current {
		q.current--
	}
	return removed, true
}

// Move relocates an upcoming song. The current song (position 0) can't be moved.
func (q *Queue) Move(from, to int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	length := len(q.entries) - q.current
	if from < 0 || from >= length || to < 0 || to >= length || from == to {
		return false
	}
	if from == 0 {
		return false
	}

	actualFrom := q.current + from
	actualTo := q.current + to
	song := q.entries[actualFrom]
	q.entries = slices.Delete(q.entries, actualFrom, actualFrom+1)
	q.entries = slices.Insert(q.entries, actualTo, song)
	return true
}

// ShuffleUpcoming randomly reorders the songs after the current one.
func (q *Queue) ShuffleUpcoming() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) <= q.current+1 {
		return
	}
	upcoming := q.entries[q.current+1:]
	rand.Shuffle(len(upcoming), func(i, j int) {
		upcoming[i], upcoming[j] = upcoming[j], upcoming[i]
	})
}

// Info summarizes the unplayed part of the queue.
func (q *Queue) Info() Info {
	q.mu.Lock()
	defer q.mu.Unlock()

	songs := q.listLocked()
	info := Info{
		TotalSongs: len(songs),
		TotalDuration: lo.SumBy(songs, func(s music.Song) int {
			return max(s.Duration, 0)
		}),
		IsEmpty: len(songs) == 0,
	}
	if current, ok := q.currentLocked(); ok {
		info.CurrentSong = &current
	}
	return info
}

// Len returns the number of stored entries, finished ones included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// MaxSize returns the queue capacity.
func (q *Queue) MaxSize() int {
	return q.maxSize
}

// position returns the internal current index. Used by tests to check invariants.
func (q *Queue) position() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

package music

import "time"

// Play records that a song was queued in a conversation.
type Play struct {
	ID       string    `json:"id"`
	ChatID   int64     `json:"chat_id"`
	Song     Song      `json:"song"`
	PlayedAt time.Time `json:"played_at"`
}

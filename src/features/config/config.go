package config

import "time"

// Config holds the application configuration.
type Config struct {
	Telegram Telegram `yaml:"telegram"`
	Logger   Logger   `yaml:"logger"`
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Queue    Queue    `yaml:"queue"`
	Media    Media    `yaml:"media"`
	Ytdlp    Ytdlp    `yaml:"ytdlp"`
}

// Queue holds the per-conversation queue settings.
type Queue struct {
	MaxSize int `yaml:"max_size" validate:"gte=1"`
}

// Media holds the settings for searching and fetching audio.
type Media struct {
	MaxDurationSeconds   int       `yaml:"max_duration_seconds" validate:"gte=0"` // Enforced before queueing, 0 disables
	SearchResults        int       `yaml:"search_results" validate:"gte=1,lte=10"`
	TempDir              string    `yaml:"temp_dir" validate:"required"`
	TempMaxAgeHours      int       `yaml:"temp_max_age_hours" validate:"gte=0"`
	AudioFormat          string    `yaml:"audio_format" validate:"omitempty,oneof=mp3 flac m4a"` // Empty keeps the source format
	MaxRequestsPerMinute int       `yaml:"max_requests_per_minute" validate:"gte=0"`             // Per user, 0 disables
	Thumbnail            Thumbnail `yaml:"thumbnail"`
}

// Thumbnail holds the settings for cover images attached to sent audio.
type Thumbnail struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	Quality int  `yaml:"quality"`
}

// Ytdlp holds the settings of the yt-dlp subprocess.
type Ytdlp struct {
	Path       string        `yaml:"path" validate:"required"`
	Timeout    time.Duration `yaml:"timeout"`
	Proxy      string        `yaml:"proxy,omitempty"`
	Cookies    string        `yaml:"cookies,omitempty"`
	MaxRetries int           `yaml:"max_retries" validate:"gte=0"`
}

// Database holds the configuration for the database
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
	BotHandle    string   `yaml:"bot_handle"`
}

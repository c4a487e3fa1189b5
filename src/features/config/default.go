package config

import "time"

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		Telegram: Telegram{
			Enabled:      false,
			Token:        "",                   // Can be obtained with https://t.me/BotFather
			AllowedUsers: []string{"user1"},    // No @
			BotHandle:    "@TubequeueDemoBot", // With @
		},
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Server: Server{
			PrintRoutes: false,
			Port:        3535,
		},
		Database: Database{
			Path: "./tubequeue.db",
		},
		Queue: Queue{
			MaxSize: 50,
		},
		Media: Media{
			MaxDurationSeconds:   600,
			SearchResults:        5,
			TempDir:              "./temp",
			TempMaxAgeHours:      24,
			AudioFormat:          "",
			MaxRequestsPerMinute: 10,
			Thumbnail: Thumbnail{
				Enabled: true,
				Size:    320,
				Quality: 85,
			},
		},
		Ytdlp: Ytdlp{
			Path:       "yt-dlp",
			Timeout:    2 * time.Minute,
			MaxRetries: 3,
		},
	}
}

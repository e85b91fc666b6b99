package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	DefaultMaxPlayers        int
	AllowMultiTeamMembership bool
	PersistTimeoutSeconds    int
	BroadcastTimeoutSeconds  int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	RedisURL                 string
	SpotifyClientID          string
	SpotifyClientSecret      string
	SpotifyRedirectURI       string
	LyricsBaseURL            string
	TranslateBaseURL         string
}

func Default() Config {
	return Config{
		DefaultMaxPlayers:        4,
		AllowMultiTeamMembership: false,
		PersistTimeoutSeconds:    5,
		BroadcastTimeoutSeconds:  5,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		LyricsBaseURL:            "https://api.lyrics.ovh/v1",
		TranslateBaseURL:         "https://api.mymemory.translated.net",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("DEFAULT_MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultMaxPlayers = value
		}
	}
	if raw := os.Getenv("ALLOW_MULTI_TEAM_MEMBERSHIP"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.AllowMultiTeamMembership = value
		}
	}
	if raw := os.Getenv("PERSIST_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PersistTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("BROADCAST_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.BroadcastTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		cfg.RedisURL = raw
	}
	if raw := os.Getenv("SPOTIFY_CLIENT_ID"); raw != "" {
		cfg.SpotifyClientID = raw
	}
	if raw := os.Getenv("SPOTIFY_CLIENT_SECRET"); raw != "" {
		cfg.SpotifyClientSecret = raw
	}
	if raw := os.Getenv("SPOTIFY_REDIRECT_URI"); raw != "" {
		cfg.SpotifyRedirectURI = raw
	}
	if raw := os.Getenv("LYRICS_BASE_URL"); raw != "" {
		cfg.LyricsBaseURL = raw
	}
	if raw := os.Getenv("TRANSLATE_BASE_URL"); raw != "" {
		cfg.TranslateBaseURL = raw
	}
	return cfg
}

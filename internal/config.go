package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	GameLoopInterval time.Duration `env:"GAME_LOOP_INTERVAL,default=1s"`
	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL,default=60s"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=500ms"`
	MetricInterval   time.Duration `env:"METRIC_INTERVAL,default=30s"`

	Intermission           time.Duration `env:"INTERMISSION,default=10s"`
	AllAnsweredDelay       time.Duration `env:"ALL_ANSWERED_DELAY,default=5s"`
	AnswerGrace            time.Duration `env:"ANSWER_GRACE,default=2s"`
	RoomLifetime           time.Duration `env:"ROOM_LIFETIME,default=2h"`
	DefaultMaxParticipants int           `env:"DEFAULT_MAX_PARTICIPANTS,default=1000"`

	EventBufferSize int           `env:"EVENT_BUFFER_SIZE,default=1024"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=2s"`

	InviteSecret        string        `env:"INVITE_SECRET,required=true"`
	InviteTTL           time.Duration `env:"INVITE_TTL,default=24h"`
	CensoredReplacement string        `env:"CENSORED_REPLACEMENT,default=*"`
}

// Validate catches values the env tags cannot express.
func (c Config) Validate() error {
	if len(c.InviteSecret) < 32 {
		return fmt.Errorf("INVITE_SECRET must be at least 32 bytes, got %d", len(c.InviteSecret))
	}
	if c.DefaultMaxParticipants < 1 || c.DefaultMaxParticipants > 1000 {
		return fmt.Errorf("DEFAULT_MAX_PARTICIPANTS must be in [1, 1000], got %d", c.DefaultMaxParticipants)
	}
	if c.EventBufferSize < 1 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be positive, got %d", c.EventBufferSize)
	}
	return nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CENSORED_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

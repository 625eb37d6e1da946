package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/nevaan9/pho_bot/internal/schedule"
	"github.com/nevaan9/pho_bot/pkg/tarantool"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreTarantool = "tarantool"
	StoreLevelDB   = "leveldb"
)

type Config struct {
	AppEnv   string `yaml:"APP_ENV"   env:"APP_ENV"   env-default:"development"`
	BotToken string `yaml:"BOT_TOKEN" env:"BOT_TOKEN" env-required:"true"`
	// BotName is the bot's username, used to recognize its own posts. Empty means the token's user.
	BotName  string `yaml:"BOT_NAME"  env:"BOT_NAME"`
	MmURL    string `yaml:"MM_URL"    env:"MM_URL"    env-required:"true"`
	MmWsURL  string `yaml:"MM_WS_URL" env:"MM_WS_URL" env-required:"true"`
	LogLevel string `yaml:"LOG_LEVEL" env:"LOG_LEVEL" env-default:"debug"`
	Timezone string `yaml:"TIMEZONE"  env:"TIMEZONE"`

	StoreDriver string           `yaml:"STORE_DRIVER" env:"STORE_DRIVER" env-default:"tarantool"`
	Tarantool   tarantool.Config `yaml:"TARANTOOL"    env:"TARANTOOL"`
	LevelDB     LevelDBConfig    `yaml:"LEVELDB"      env:"LEVELDB"`

	EventPartitions int           `yaml:"EVENT_PARTITIONS" env:"EVENT_PARTITIONS" env-default:"16"`
	EventBuffer     int           `yaml:"EVENT_BUFFER"     env:"EVENT_BUFFER"     env-default:"64"`
	GracePeriod     time.Duration `yaml:"GRACE_PERIOD"     env:"GRACE_PERIOD"     env-default:"0s"`
	UserCacheSize   int           `yaml:"USER_CACHE_SIZE"  env:"USER_CACHE_SIZE"  env-default:"500"`
	PostCacheSize   int           `yaml:"POST_CACHE_SIZE"  env:"POST_CACHE_SIZE"  env-default:"1000"`
	CalendarURL     string        `yaml:"CALENDAR_URL"     env:"CALENDAR_URL"     env-default:"https://calendar.google.com/calendar/"`
	PurgeAt         string        `yaml:"PURGE_AT"         env:"PURGE_AT"         env-default:"04:00"`

	Emojis models.Emojis `yaml:"EMOJIS" env:"EMOJIS"`
}

type LevelDBConfig struct {
	Path string `yaml:"LEVELDB_PATH" env:"LEVELDB_PATH" env-default:"~/.pho_bot"`
	Name string `yaml:"LEVELDB_NAME" env:"LEVELDB_NAME" env-default:"tallies"`
}

// New reads the config from the environment. Outside production the .env file is
// loaded first and must exist; variables already set in the environment win.
func New() (*Config, error) {
	return NewFromFiles()
}

// NewFromFiles is New with explicit dotenv files instead of .env.
func NewFromFiles(filenames ...string) (*Config, error) {
	if os.Getenv("APP_ENV") != EnvProduction {
		if err := godotenv.Load(filenames...); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, err
	}
	if config.Timezone == "" {
		config.Timezone = schedule.DefaultTimezone
	}
	return &config, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

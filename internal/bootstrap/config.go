package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"

	"github.com/spf13/viper"

	errs "game_review/internal/errors"
)

type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	IsLocalCors bool   `mapstructure:"LOCAL_CORS"`
	PageSize    int    `mapstructure:"PAGE_SIZE"`

	EnginePath    string `mapstructure:"ENGINE_PATH"`
	EngineDepth   int    `mapstructure:"ENGINE_DEPTH"`
	EngineWorkers int    `mapstructure:"ENGINE_WORKERS"`
	EngineHashMB  int    `mapstructure:"ENGINE_HASH_MB"`
	EngineThreads int    `mapstructure:"ENGINE_THREADS"`

	// OracleAddr switches the server to the remote oracle microservice.
	OracleAddr string `mapstructure:"ORACLE_ADDR"`
	OraclePort string `mapstructure:"ORACLE_PORT"`

	BookPath   string `mapstructure:"BOOK_PATH"`
	BookMaxPly int    `mapstructure:"BOOK_MAX_PLY"`

	CacheDriver   string `mapstructure:"CACHE_DRIVER"`
	CachePath     string `mapstructure:"CACHE_PATH"`
	CacheCompress bool   `mapstructure:"CACHE_COMPRESS"`
	RedisUrl      string `mapstructure:"REDIS_URL"`
	MongoUri      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	BadgerPath    string `mapstructure:"BADGER_PATH"`

	BestMax         int `mapstructure:"BEST_MAX"`
	ExcellentBelow  int `mapstructure:"EXCELLENT_BELOW"`
	GoodBelow       int `mapstructure:"GOOD_BELOW"`
	InaccuracyBelow int `mapstructure:"INACCURACY_BELOW"`
	MistakeBelow    int `mapstructure:"MISTAKE_BELOW"`
	BrilliantBand   int `mapstructure:"BRILLIANT_BAND"`
	GreatBand       int `mapstructure:"GREAT_BAND"`
	EndgameMaterial int `mapstructure:"ENDGAME_MATERIAL"`
}

var cacheDrivers = map[string]bool{
	"file":   true,
	"redis":  true,
	"mongo":  true,
	"badger": true,
	"memory": true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOCAL_CORS", false)
	v.SetDefault("PAGE_SIZE", 20)

	v.SetDefault("ENGINE_PATH", "stockfish")
	v.SetDefault("ENGINE_DEPTH", 15)
	v.SetDefault("ENGINE_WORKERS", runtime.NumCPU())
	v.SetDefault("ENGINE_HASH_MB", 128)
	v.SetDefault("ENGINE_THREADS", 1)
	v.SetDefault("ORACLE_ADDR", "")
	v.SetDefault("ORACLE_PORT", "8082")

	v.SetDefault("BOOK_PATH", "book.json")
	v.SetDefault("BOOK_MAX_PLY", 6)

	v.SetDefault("CACHE_DRIVER", "file")
	v.SetDefault("CACHE_PATH", "analysis_cache.json")
	v.SetDefault("CACHE_COMPRESS", false)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "game_review")
	v.SetDefault("BADGER_PATH", "analysis_badger")

	v.SetDefault("BEST_MAX", 0)
	v.SetDefault("EXCELLENT_BELOW", 20)
	v.SetDefault("GOOD_BELOW", 50)
	v.SetDefault("INACCURACY_BELOW", 100)
	v.SetDefault("MISTAKE_BELOW", 300)
	v.SetDefault("BRILLIANT_BAND", 10)
	v.SetDefault("GREAT_BAND", 30)
	v.SetDefault("ENDGAME_MATERIAL", 14)
}

// Setup loads configuration from defaults, the optional env file at cfgPath
// and the process environment, in increasing priority.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.EngineDepth <= 0 {
		return fmt.Errorf("%w: ENGINE_DEPTH must be positive, got %d", errs.ErrInvalidConfig, c.EngineDepth)
	}
	if c.EngineWorkers <= 0 {
		return fmt.Errorf("%w: ENGINE_WORKERS must be positive, got %d", errs.ErrInvalidConfig, c.EngineWorkers)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: PAGE_SIZE must be positive, got %d", errs.ErrInvalidConfig, c.PageSize)
	}
	if !cacheDrivers[c.CacheDriver] {
		return fmt.Errorf("%w: unknown CACHE_DRIVER %q", errs.ErrInvalidConfig, c.CacheDriver)
	}
	if c.BestMax < 0 ||
		c.BestMax >= c.ExcellentBelow ||
		c.ExcellentBelow >= c.GoodBelow ||
		c.GoodBelow >= c.InaccuracyBelow ||
		c.InaccuracyBelow >= c.MistakeBelow {
		return fmt.Errorf("%w: loss thresholds must be strictly increasing", errs.ErrInvalidConfig)
	}
	if c.BrilliantBand < 0 || c.GreatBand < c.BrilliantBand {
		return fmt.Errorf("%w: GREAT_BAND must be at least BRILLIANT_BAND", errs.ErrInvalidConfig)
	}
	return nil
}

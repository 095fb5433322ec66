package config

import (
	"time"

	"github.com/spf13/pflag"
)

// TVLConfig holds configuration for the tvl command.
type TVLConfig struct {
	RPCURL       string
	Pool         string
	Block        uint64
	WordRange    int
	BatchSize    int
	MaxInFlight  int
	MaxRetries   int
	RetryBackoff time.Duration
	Out          string
	PGDSN        string
	LogLevel     string
}

// LoadTVL merges config file, environment variables, and flags into TVLConfig.
func LoadTVL(cfgFile string, flags *pflag.FlagSet) (TVLConfig, error) {
	v := newViper()

	v.SetDefault("word-range", 100)
	v.SetDefault("batch-size", 200)
	v.SetDefault("max-in-flight", 4)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("out", "./data/tvl.jsonl")
	v.SetDefault("log-level", "info")

	if err := readSources(v, cfgFile, flags); err != nil {
		return TVLConfig{}, err
	}

	cfg := TVLConfig{
		RPCURL:       v.GetString("rpc"),
		Pool:         v.GetString("pool"),
		Block:        v.GetUint64("block"),
		WordRange:    v.GetInt("word-range"),
		BatchSize:    v.GetInt("batch-size"),
		MaxInFlight:  v.GetInt("max-in-flight"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// SimulateConfig holds configuration for the simulate command.
type SimulateConfig struct {
	RPCURL       string
	Pool         string
	Block        uint64
	Amounts      []string
	Direction    string
	FeeOverride  uint32
	WordRange    int
	BatchSize    int
	MaxInFlight  int
	MaxRetries   int
	RetryBackoff time.Duration
	Out          string
	PGDSN        string
	LogLevel     string
}

// LoadSimulate merges config file, environment variables, and flags into SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	v := newViper()

	v.SetDefault("direction", "zero-for-one")
	v.SetDefault("word-range", 100)
	v.SetDefault("batch-size", 200)
	v.SetDefault("max-in-flight", 4)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("out", "./data/slippage.jsonl")
	v.SetDefault("log-level", "info")

	if err := readSources(v, cfgFile, flags); err != nil {
		return SimulateConfig{}, err
	}

	cfg := SimulateConfig{
		RPCURL:       v.GetString("rpc"),
		Pool:         v.GetString("pool"),
		Block:        v.GetUint64("block"),
		Amounts:      getStringSlice(v, "amount"),
		Direction:    v.GetString("direction"),
		FeeOverride:  v.GetUint32("fee-override"),
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

// ParseDirection maps a direction name to the zeroForOne flag.
func ParseDirection(input string) (bool, error) {
	switch input {
	case "zero-for-one", "0to1", "":
		return true, nil
	case "one-for-zero", "1to0":
		return false, nil
	default:
		return false, fmt.Errorf("unknown direction %q", input)
	}
}

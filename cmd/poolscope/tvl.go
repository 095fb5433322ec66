package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/config"
	"poolScope/internal/dex"
	"poolScope/internal/model"
	"poolScope/internal/pool"
	"poolScope/internal/storage"
	"poolScope/internal/storage/postgres"
)

func runTVL(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTVL(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := connectRPC(ctx, cfg.RPCURL)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	state, err := loadPoolState(ctx, chainClient, cfg.Pool, cfg.Block, dex.FetcherConfig{
		WordRange:    cfg.WordRange,
		BatchSize:    cfg.BatchSize,
		MaxInFlight:  cfg.MaxInFlight,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return err
	}

	totals := pool.AggregateTVL(state.bands, pool.SqrtPriceX96ToSqrtPrice(state.snapshot.SqrtPriceX96))

	snapshot := model.TVLSnapshot{
		ChainID:     state.chainID,
		PoolAddress: state.poolAddr.Hex(),
		BlockNumber: state.snapshot.BlockNumber,
		BlockTime:   state.snapshot.BlockTime,
		Token0:      totals.Token0,
		Token1:      totals.Token1,
		BandCount:   len(state.bands),
	}

	var sink storage.Storage = storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutTVLSnapshots([]model.TVLSnapshot{snapshot}); err != nil {
		return fmt.Errorf("write tvl snapshot: %w", err)
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.UpsertPools(ctx, []model.Pool{state.poolRecord()}); err != nil {
			return fmt.Errorf("upsert pool: %w", err)
		}
		if err := store.UpsertTVLSnapshots(ctx, []model.TVLSnapshot{snapshot}); err != nil {
			return fmt.Errorf("upsert tvl snapshot: %w", err)
		}
	}

	logger.Info("tvl complete",
		zap.String("pool", state.poolAddr.Hex()),
		zap.Uint64("block", state.snapshot.BlockNumber),
		zap.String("token0_total", totals.Token0.String()),
		zap.String("token1_total", totals.Token1.String()),
		zap.Int("bands", len(state.bands)),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("out", cfg.Out),
	)
	return nil
}

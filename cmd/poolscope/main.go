package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolScope/internal/chain"
	"poolScope/internal/config"
	"poolScope/internal/dex"
	"poolScope/internal/model"
	"poolScope/internal/pool"
	"poolScope/internal/storage"
	"poolScope/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "poolscope",
		Short:        "Concentrated-liquidity pool analyzer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Reconstruct the liquidity band table of a pool",
		RunE:  runSnapshot,
	}
	addStateFlags(snapshotCmd)
	snapshotCmd.Flags().String("out", "./data/bands.jsonl", "output JSONL path")
	root.AddCommand(snapshotCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate swaps over the band table and report slippage",
		RunE:  runSimulate,
	}
	addStateFlags(simulateCmd)
	simulateCmd.Flags().StringSlice("amount", nil, "input amounts to simulate (comma-separated)")
	simulateCmd.Flags().String("direction", "zero-for-one", "trade direction (zero-for-one, one-for-zero)")
	simulateCmd.Flags().Uint32("fee-override", 0, "fee in pips, 0 uses the pool fee")
	simulateCmd.Flags().String("out", "./data/slippage.jsonl", "output JSONL path")
	root.AddCommand(simulateCmd)

	tvlCmd := &cobra.Command{
		Use:   "tvl",
		Short: "Aggregate band liquidity into token TVL",
		RunE:  runTVL,
	}
	addStateFlags(tvlCmd)
	tvlCmd.Flags().String("out", "./data/tvl.jsonl", "output JSONL path")
	root.AddCommand(tvlCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL (archive node for historical blocks)")
	cmd.Flags().String("pool", "", "pool contract address")
	cmd.Flags().Uint64("block", 0, "block number to pin, 0 means latest")
	cmd.Flags().Int("word-range", 100, "bitmap words scanned on each side of the current word")
	cmd.Flags().Int("batch-size", 200, "eth_calls per RPC batch")
	cmd.Flags().Int("max-in-flight", 4, "concurrent RPC batches")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
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

	records := make([]model.BandSnapshotRecord, 0, len(state.bands))
	for _, band := range state.bands {
		records = append(records, model.BandSnapshotRecord{
			ChainID:     state.chainID,
			PoolAddress: state.poolAddr.Hex(),
			BlockNumber: state.snapshot.BlockNumber,
			BlockTime:   state.snapshot.BlockTime,
			TickLower:   band.TickLower,
			TickUpper:   band.TickUpper,
			Liquidity:   band.Liquidity,
		})
	}

	var sink storage.Storage = storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutBandSnapshots(records); err != nil {
		return fmt.Errorf("write bands: %w", err)
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
		if err := store.UpsertBandSnapshots(ctx, records); err != nil {
			return fmt.Errorf("upsert bands: %w", err)
		}
	}

	logger.Info("snapshot complete",
		zap.String("pool", state.poolAddr.Hex()),
		zap.Uint64("block", state.snapshot.BlockNumber),
		zap.Int32("tick", state.snapshot.Tick),
		zap.Int("bands", len(state.bands)),
		zap.String("out", cfg.Out),
	)
	return nil
}

// poolState bundles the fetched and reconstructed view of one pool at one
// block, shared by all three commands.
type poolState struct {
	chainID  uint64
	poolAddr common.Address
	meta     model.PoolMeta
	snapshot model.PoolSnapshot
	bands    []model.Band
}

func (s poolState) poolRecord() model.Pool {
	return model.Pool{
		ChainID:     s.chainID,
		Address:     s.poolAddr.Hex(),
		Token0:      s.meta.Token0,
		Token1:      s.meta.Token1,
		Fee:         s.meta.Fee,
		TickSpacing: s.meta.TickSpacing,
		LastBlock:   s.snapshot.BlockNumber,
	}
}

func connectRPC(ctx context.Context, rpcURL string) (*chain.Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	chainClient, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	return chainClient, nil
}

func loadPoolState(ctx context.Context, chainClient *chain.Client, poolInput string, block uint64, fetchCfg dex.FetcherConfig, logger *zap.Logger) (poolState, error) {
	if !common.IsHexAddress(poolInput) {
		return poolState{}, fmt.Errorf("invalid pool address: %s", poolInput)
	}
	poolAddr := common.HexToAddress(poolInput)

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return poolState{}, fmt.Errorf("get chain id: %w", err)
	}

	tokenCache := dex.NewTokenMetaCache()
	meta, err := dex.FetchPoolMeta(ctx, chainClient, poolAddr, tokenCache, logger)
	if err != nil {
		return poolState{}, fmt.Errorf("fetch pool metadata: %w", err)
	}

	fetcher := dex.NewStateFetcher(fetchCfg, chainClient, logger)
	snapshot, ticks, err := fetcher.FetchState(ctx, poolAddr, meta, block)
	if err != nil {
		return poolState{}, fmt.Errorf("fetch pool state: %w", err)
	}

	bands := pool.ReconstructBands(snapshot, ticks, meta.TickSpacing)

	logger.Info("pool state loaded",
		zap.String("pool", poolAddr.Hex()),
		zap.Uint64("block", snapshot.BlockNumber),
		zap.Int32("tick", snapshot.Tick),
		zap.Int("initialized_ticks", len(ticks)),
		zap.Int("bands", len(bands)),
	)

	return poolState{
		chainID:  chainID.Uint64(),
		poolAddr: poolAddr,
		meta:     meta,
		snapshot: snapshot,
		bands:    bands,
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}

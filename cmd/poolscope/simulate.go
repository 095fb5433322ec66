package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/config"
	"poolScope/internal/dex"
	"poolScope/internal/model"
	"poolScope/internal/pool"
	"poolScope/internal/storage"
	"poolScope/internal/storage/postgres"
)

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Amounts) == 0 {
		return fmt.Errorf("amount list is required")
	}
	amounts := make([]decimal.Decimal, 0, len(cfg.Amounts))
	for _, raw := range cfg.Amounts {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", raw, err)
		}
		if amount.Sign() <= 0 {
			return fmt.Errorf("amount must be positive: %s", raw)
		}
		amounts = append(amounts, amount)
	}

	zeroForOne, err := config.ParseDirection(cfg.Direction)
	if err != nil {
		return err
	}

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

	feePips := state.meta.Fee
	if cfg.FeeOverride > 0 {
		feePips = cfg.FeeOverride
	}

	results := make([]model.SlippageResult, 0, len(amounts))
	for _, amount := range amounts {
		outcome, err := pool.SimulateSwap(state.bands, state.snapshot, amount, zeroForOne, feePips)
		if err != nil {
			return fmt.Errorf("simulate amount %s: %w", amount.String(), err)
		}
		results = append(results, model.SlippageResult{
			ChainID:          state.chainID,
			PoolAddress:      state.poolAddr.Hex(),
			BlockNumber:      state.snapshot.BlockNumber,
			ZeroForOne:       zeroForOne,
			AmountIn:         outcome.AmountIn,
			AmountOut:        outcome.AmountOut,
			SpotPrice:        outcome.SpotPrice,
			FinalPrice:       outcome.FinalPrice,
			SlippagePct:      outcome.SlippagePct,
			GrossSlippagePct: outcome.GrossSlippagePct,
			PartialFill:      outcome.PartialFill,
		})

		logger.Info("swap simulated",
			zap.String("amount_in", outcome.AmountIn.String()),
			zap.Bool("zero_for_one", zeroForOne),
			zap.String("slippage_pct", outcome.SlippagePct.String()),
			zap.Bool("partial_fill", outcome.PartialFill),
		)
	}

	var sink storage.Storage = storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutSlippageResults(results); err != nil {
		return fmt.Errorf("write slippage results: %w", err)
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
		if err := store.UpsertSlippageResults(ctx, results); err != nil {
			return fmt.Errorf("upsert slippage results: %w", err)
		}
	}

	logger.Info("simulate complete",
		zap.String("pool", state.poolAddr.Hex()),
		zap.Uint64("block", state.snapshot.BlockNumber),
		zap.Int("amounts", len(amounts)),
		zap.Uint32("fee_pips", feePips),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("out", cfg.Out),
	)
	return nil
}

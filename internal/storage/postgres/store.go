package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolScope/internal/model"
)

// Store provides Postgres persistence for analysis results.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPools inserts or updates pool metadata.
func (s *Store) UpsertPools(ctx context.Context, pools []model.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				chain_id, pool_address, token0, token1, fee, tick_spacing, last_block, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				fee = EXCLUDED.fee,
				tick_spacing = EXCLUDED.tick_spacing,
				last_block = GREATEST(pools.last_block, EXCLUDED.last_block),
				updated_at = now()
		`,
			int64(pool.ChainID),
			pool.Address,
			pool.Token0,
			pool.Token1,
			pool.Fee,
			pool.TickSpacing,
			int64(pool.LastBlock),
		)
	}
	return s.sendBatch(ctx, batch, len(pools))
}

// UpsertBandSnapshots inserts or updates reconstructed bands. Re-running an
// analysis at the same block replaces the previous band table.
func (s *Store) UpsertBandSnapshots(ctx context.Context, records []model.BandSnapshotRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO band_snapshots (
				chain_id, pool_address, block_number, block_time, tick_lower, tick_upper, active_liquidity, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (chain_id, pool_address, block_number, tick_lower)
			DO UPDATE SET
				block_time = EXCLUDED.block_time,
				tick_upper = EXCLUDED.tick_upper,
				active_liquidity = EXCLUDED.active_liquidity,
				updated_at = now()
		`,
			int64(r.ChainID),
			r.PoolAddress,
			int64(r.BlockNumber),
			int64(r.BlockTime),
			r.TickLower,
			r.TickUpper,
			r.Liquidity.String(),
		)
	}
	return s.sendBatch(ctx, batch, len(records))
}

// UpsertSlippageResults inserts or updates simulated swap outcomes.
func (s *Store) UpsertSlippageResults(ctx context.Context, results []model.SlippageResult) error {
	if len(results) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range results {
		batch.Queue(`
			INSERT INTO slippage_results (
				chain_id, pool_address, block_number, zero_for_one, amount_in,
				amount_out, spot_price, final_price, slippage_pct, gross_slippage_pct, partial_fill,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
			ON CONFLICT (chain_id, pool_address, block_number, zero_for_one, amount_in)
			DO UPDATE SET
				amount_out = EXCLUDED.amount_out,
				spot_price = EXCLUDED.spot_price,
				final_price = EXCLUDED.final_price,
				slippage_pct = EXCLUDED.slippage_pct,
				gross_slippage_pct = EXCLUDED.gross_slippage_pct,
				partial_fill = EXCLUDED.partial_fill,
				updated_at = now()
		`,
			int64(r.ChainID),
			r.PoolAddress,
			int64(r.BlockNumber),
			r.ZeroForOne,
			r.AmountIn.String(),
			r.AmountOut.String(),
			r.SpotPrice.String(),
			r.FinalPrice.String(),
			r.SlippagePct.String(),
			r.GrossSlippagePct.String(),
			r.PartialFill,
		)
	}
	return s.sendBatch(ctx, batch, len(results))
}

// UpsertTVLSnapshots inserts or updates aggregated TVL rows.
func (s *Store) UpsertTVLSnapshots(ctx context.Context, snapshots []model.TVLSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range snapshots {
		batch.Queue(`
			INSERT INTO tvl_snapshots (
				chain_id, pool_address, block_number, block_time, token0_total, token1_total, band_count, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (chain_id, pool_address, block_number)
			DO UPDATE SET
				block_time = EXCLUDED.block_time,
				token0_total = EXCLUDED.token0_total,
				token1_total = EXCLUDED.token1_total,
				band_count = EXCLUDED.band_count,
				updated_at = now()
		`,
			int64(t.ChainID),
			t.PoolAddress,
			int64(t.BlockNumber),
			int64(t.BlockTime),
			t.Token0.String(),
			t.Token1.String(),
			t.BandCount,
		)
	}
	return s.sendBatch(ctx, batch, len(snapshots))
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

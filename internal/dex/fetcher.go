package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/chain"
	"poolScope/internal/model"
	"poolScope/internal/pool"
)

// FetcherConfig controls the batch state fetcher.
type FetcherConfig struct {
	WordRange    int // bitmap words scanned on each side of the current word
	BatchSize    int // eth_calls per RPC batch
	MaxInFlight  int // concurrent RPC batches
	MaxRetries   int
	RetryBackoff time.Duration
}

// StateFetcher assembles the raw pool state the engine consumes: slot0 and
// liquidity, the tick bitmap words around the current tick, and the net
// liquidity deltas of every initialized tick found there. Every call is
// pinned to a single block number so the engine sees one consistent
// snapshot.
type StateFetcher struct {
	cfg    FetcherConfig
	chain  *chain.Client
	logger *zap.Logger
}

// NewStateFetcher builds a StateFetcher with its dependencies.
func NewStateFetcher(cfg FetcherConfig, chainClient *chain.Client, logger *zap.Logger) *StateFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WordRange <= 0 {
		cfg.WordRange = 100
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	return &StateFetcher{cfg: cfg, chain: chainClient, logger: logger}
}

// FetchState captures the pool snapshot and the initialized ticks inside the
// configured bitmap scan range, all at one block. A blockNumber of zero pins
// the latest block at the time of the call.
func (f *StateFetcher) FetchState(ctx context.Context, poolAddr common.Address, meta model.PoolMeta, blockNumber uint64) (model.PoolSnapshot, []model.TickInfo, error) {
	if f.chain == nil {
		return model.PoolSnapshot{}, nil, fmt.Errorf("chain client is nil")
	}
	if meta.TickSpacing <= 0 {
		return model.PoolSnapshot{}, nil, fmt.Errorf("tick spacing must be positive, got %d", meta.TickSpacing)
	}

	if blockNumber == 0 {
		latest, err := f.chain.LatestBlockNumber(ctx)
		if err != nil {
			return model.PoolSnapshot{}, nil, fmt.Errorf("get latest block: %w", err)
		}
		blockNumber = latest
	}

	snapshot, err := f.fetchSnapshot(ctx, poolAddr, blockNumber)
	if err != nil {
		return model.PoolSnapshot{}, nil, err
	}

	words, err := f.fetchBitmapWords(ctx, poolAddr, snapshot.Tick, meta.TickSpacing, blockNumber)
	if err != nil {
		return model.PoolSnapshot{}, nil, err
	}

	initialized := pool.InitializedTicks(words, meta.TickSpacing)
	f.logger.Debug("bitmap scan complete",
		zap.Int("words", len(words)),
		zap.Int("initialized_ticks", len(initialized)),
		zap.Uint64("block", blockNumber),
	)

	ticks, err := f.fetchTickInfos(ctx, poolAddr, initialized, blockNumber)
	if err != nil {
		return model.PoolSnapshot{}, nil, err
	}

	return snapshot, ticks, nil
}

// fetchSnapshot reads slot0 and liquidity in one RPC batch.
func (f *StateFetcher) fetchSnapshot(ctx context.Context, poolAddr common.Address, blockNumber uint64) (model.PoolSnapshot, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("parse pool abi: %w", err)
	}

	slot0Data, err := poolABI.Pack("slot0")
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("pack slot0: %w", err)
	}
	liquidityData, err := poolABI.Pack("liquidity")
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("pack liquidity: %w", err)
	}

	calls := []chain.Call{
		{To: poolAddr, Data: slot0Data},
		{To: poolAddr, Data: liquidityData},
	}

	results, err := f.batchWithRetry(ctx, calls, blockNumber)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	for _, res := range results {
		if res.Err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("fetch snapshot: %w", res.Err)
		}
	}

	slot0Values, err := poolABI.Unpack("slot0", results[0].Data)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("unpack slot0: %w", err)
	}
	if len(slot0Values) < 2 {
		return model.PoolSnapshot{}, fmt.Errorf("slot0 return size %d", len(slot0Values))
	}
	sqrtPrice, err := asBigInt(slot0Values[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("slot0 sqrt price: %w", err)
	}
	tickInt, err := asBigInt(slot0Values[1])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("slot0 tick: %w", err)
	}

	liquidityValues, err := poolABI.Unpack("liquidity", results[1].Data)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("unpack liquidity: %w", err)
	}
	liquidity, err := asBigInt(liquidityValues[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("liquidity: %w", err)
	}

	blockTime, err := f.chain.BlockTimestamp(ctx, blockNumber)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("block timestamp %d: %w", blockNumber, err)
	}

	return model.PoolSnapshot{
		SqrtPriceX96: sqrtPrice,
		Tick:         tick,
		Liquidity:    liquidity,
		BlockNumber:  blockNumber,
		BlockTime:    blockTime,
	}, nil
}

// fetchBitmapWords scans tickBitmap over the symmetric word range around the
// current tick. Words whose call fails are treated as absent, which narrows
// the observed range instead of failing the analysis.
func (f *StateFetcher) fetchBitmapWords(ctx context.Context, poolAddr common.Address, tick int32, tickSpacing int32, blockNumber uint64) (map[int16]*big.Int, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}

	positions := WordPositions(pool.WordPosition(tick, tickSpacing), f.cfg.WordRange)
	calls := make([]chain.Call, 0, len(positions))
	for _, pos := range positions {
		data, err := poolABI.Pack("tickBitmap", pos)
		if err != nil {
			return nil, fmt.Errorf("pack tickBitmap(%d): %w", pos, err)
		}
		calls = append(calls, chain.Call{To: poolAddr, Data: data})
	}

	results, err := f.runBatches(ctx, calls, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch bitmap words: %w", err)
	}

	words := make(map[int16]*big.Int, len(positions))
	for i, res := range results {
		if res.Err != nil {
			f.logger.Debug("tickBitmap call failed", zap.Int16("word", positions[i]), zap.Error(res.Err))
			continue
		}
		values, err := poolABI.Unpack("tickBitmap", res.Data)
		if err != nil {
			f.logger.Debug("tickBitmap unpack failed", zap.Int16("word", positions[i]), zap.Error(err))
			continue
		}
		word, err := asBigInt(values[0])
		if err != nil {
			continue
		}
		if word.Sign() != 0 {
			words[positions[i]] = word
		}
	}
	return words, nil
}

// fetchTickInfos reads liquidityGross and liquidityNet for every initialized
// tick. A failed tick call is dropped with a warning; the reconstruction
// then runs on the remaining deltas.
func (f *StateFetcher) fetchTickInfos(ctx context.Context, poolAddr common.Address, ticks []int32, blockNumber uint64) ([]model.TickInfo, error) {
	if len(ticks) == 0 {
		return []model.TickInfo{}, nil
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}

	calls := make([]chain.Call, 0, len(ticks))
	for _, tick := range ticks {
		data, err := poolABI.Pack("ticks", big.NewInt(int64(tick)))
		if err != nil {
			return nil, fmt.Errorf("pack ticks(%d): %w", tick, err)
		}
		calls = append(calls, chain.Call{To: poolAddr, Data: data})
	}

	results, err := f.runBatches(ctx, calls, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch tick data: %w", err)
	}

	infos := make([]model.TickInfo, 0, len(ticks))
	for i, res := range results {
		if res.Err != nil {
			f.logger.Warn("ticks call failed", zap.Int32("tick", ticks[i]), zap.Error(res.Err))
			continue
		}
		values, err := poolABI.Unpack("ticks", res.Data)
		if err != nil {
			f.logger.Warn("ticks unpack failed", zap.Int32("tick", ticks[i]), zap.Error(err))
			continue
		}
		if len(values) < 2 {
			f.logger.Warn("ticks return size", zap.Int32("tick", ticks[i]), zap.Int("size", len(values)))
			continue
		}
		gross, err := asBigInt(values[0])
		if err != nil {
			continue
		}
		net, err := asBigInt(values[1])
		if err != nil {
			continue
		}
		infos = append(infos, model.TickInfo{Tick: ticks[i], LiquidityGross: gross, LiquidityNet: net})
	}
	return infos, nil
}

// runBatches executes the calls in chunks with a bounded number of RPC
// batches in flight.
func (f *StateFetcher) runBatches(ctx context.Context, calls []chain.Call, blockNumber uint64) ([]chain.CallResult, error) {
	chunks, err := SplitCalls(calls, f.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	results := make([]chain.CallResult, len(calls))
	sem := make(chan struct{}, f.cfg.MaxInFlight)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	offset := 0
	for _, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(offset int, chunk []chain.Call) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := f.batchWithRetry(ctx, chunk, blockNumber)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			copy(results[offset:], res)
		}(offset, chunk)
		offset += len(chunk)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (f *StateFetcher) batchWithRetry(ctx context.Context, calls []chain.Call, blockNumber uint64) ([]chain.CallResult, error) {
	var results []chain.CallResult
	err := withRetry(ctx, f.cfg.MaxRetries, f.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		results, err = f.chain.BatchCalls(ctx, calls, blockNumber)
		if err != nil {
			f.logger.Warn("batch call failed", zap.Int("calls", len(calls)), zap.Uint64("block", blockNumber), zap.Error(err))
		}
		return err
	})
	return results, err
}

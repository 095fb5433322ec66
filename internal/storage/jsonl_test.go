package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"poolScope/internal/model"
)

func TestJsonlStorageAppendsBandSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "bands.jsonl")

	var sink Storage = NewJsonlStorage(path)

	first := []model.BandSnapshotRecord{
		{
			ChainID:     56,
			PoolAddress: "0x1111111111111111111111111111111111111111",
			BlockNumber: 36000000,
			BlockTime:   1700000000,
			TickLower:   -60,
			TickUpper:   0,
			Liquidity:   decimal.NewFromInt(500),
		},
	}
	second := []model.BandSnapshotRecord{
		{
			ChainID:     56,
			PoolAddress: "0x1111111111111111111111111111111111111111",
			BlockNumber: 36000000,
			BlockTime:   1700000000,
			TickLower:   0,
			TickUpper:   60,
			Liquidity:   decimal.NewFromInt(600),
		},
	}

	if err := sink.PutBandSnapshots(first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := sink.PutBandSnapshots(second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var decoded []model.BandSnapshotRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.BandSnapshotRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		decoded = append(decoded, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("line count mismatch: %d != 2", len(decoded))
	}
	if decoded[0].TickLower != -60 || decoded[1].TickLower != 0 {
		t.Fatalf("append order lost: %+v", decoded)
	}
	if !decoded[1].Liquidity.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("liquidity mismatch: %s", decoded[1].Liquidity)
	}
}

func TestJsonlStorageEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bands.jsonl")

	var sink Storage = NewJsonlStorage(path)
	if err := sink.PutBandSnapshots(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch should not create the file, stat err: %v", err)
	}
}

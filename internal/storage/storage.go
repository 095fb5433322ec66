package storage

import "poolScope/internal/model"

// Storage defines a sink for analysis results.
type Storage interface {
	PutBandSnapshots(records []model.BandSnapshotRecord) error
	PutSlippageResults(results []model.SlippageResult) error
	PutTVLSnapshots(snapshots []model.TVLSnapshot) error
}

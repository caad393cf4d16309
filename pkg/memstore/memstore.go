// Package memstore provides the public factory for the in-memory record
// store, keeping the engine implementation internal.
package memstore

import (
	"github.com/SkPhilipp/records/internal/memstore"
	"github.com/SkPhilipp/records/pkg/record"
)

// Open loads persisted state from cfg.Path, captures the session baseline,
// and returns a ready Store.
//
// Example:
//
//	store, err := memstore.Open(record.Config{Path: "records.json"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(cfg record.Config) (record.Store, error) {
	return memstore.Open(cfg)
}

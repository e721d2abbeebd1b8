// Package store provides the key-value persistence used by the console for
// assets, posts, campaigns, connected accounts, and tokens.
//
// Every driver keeps records newest first: saving a new id prepends it, and
// saving an existing id replaces it in place. Concurrent saves are
// last-write-wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/constants"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

// Record is one item of a collection. Data is the item's JSON encoding.
type Record struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Store is the key-value persistence interface.
type Store interface {
	// Get returns every record of the collection, newest first.
	Get(ctx context.Context, collection string) ([]Record, error)

	// Save inserts or replaces a record.
	Save(ctx context.Context, collection string, rec Record) error

	// Delete removes a record. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Close releases the driver's resources.
	Close() error
}

// Open creates the store for driver. path is a directory for the file
// driver and a database file for sqlite; it is ignored by the memory driver.
//
// Returns an error if:
//   - driver is unknown (ErrUnknownDriver)
//   - the backing files cannot be created or opened
func Open(driver, path string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "store").Str("driver", driver).Logger()

	switch driver {
	case "", constants.StorageDriverMemory:
		return NewMemoryStore(), nil
	case constants.StorageDriverSQLite:
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, constants.SQLiteFileName)
		}
		logger.Debug().Str("path", path).Msg("opening sqlite store")
		return OpenSQLite(path, logger)
	case constants.StorageDriverFile:
		logger.Debug().Str("path", path).Msg("opening file store")
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", astroerrors.ErrUnknownDriver, driver)
	}
}

func validateCollection(collection string) error {
	if !slices.Contains(constants.Collections(), collection) {
		return fmt.Errorf("%w: %q", astroerrors.ErrUnknownCollection, collection)
	}
	return nil
}

func validateRecord(collection string, rec Record) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("record id %w", astroerrors.ErrEmptyValue)
	}
	if !json.Valid(rec.Data) {
		return fmt.Errorf("record %s: invalid json data", rec.ID)
	}
	return nil
}

// upsert applies the save rule to an in-memory slice.
func upsert(records []Record, rec Record) []Record {
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			return records
		}
	}
	return append([]Record{rec}, records...)
}

func remove(records []Record, id string) []Record {
	return slices.DeleteFunc(records, func(r Record) bool { return r.ID == id })
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record{ID: r.ID, Data: slices.Clone(r.Data)}
	}
	return out
}

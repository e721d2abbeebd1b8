// Package testutil provides testing utilities for astromedia.
//
// This package contains mock errors shared by test files. It should only
// be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for simulating collaborator failures in tests.
//
//nolint:gochecknoglobals // sentinel errors
var (
	// ErrMockNetwork simulates an unreachable remote service.
	ErrMockNetwork = errors.New("dial tcp: connection refused")

	// ErrMockSinkDown simulates a snapshot exporter that lost its broker.
	ErrMockSinkDown = errors.New("nats: connection closed")

	// ErrMockDiskFull simulates a failed write.
	ErrMockDiskFull = errors.New("write: no space left on device")

	// ErrMockStoreUnavailable simulates a store that cannot be read.
	ErrMockStoreUnavailable = errors.New("store unavailable")

	// ErrMockOracle simulates an oracle failing with an arbitrary error.
	ErrMockOracle = errors.New("oracle exploded")
)

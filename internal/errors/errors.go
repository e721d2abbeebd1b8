// Package errors provides centralized error handling for astromedia.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
var (
	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidAgents indicates an invalid agents (task engine) setting.
	ErrConfigInvalidAgents = errors.New("invalid agents configuration")

	// ErrConfigInvalidOracle indicates an invalid validation oracle setting.
	ErrConfigInvalidOracle = errors.New("invalid oracle configuration")

	// ErrConfigInvalidStorage indicates an invalid storage setting.
	ErrConfigInvalidStorage = errors.New("invalid storage configuration")

	// ErrConfigInvalidPublish indicates an invalid publishing setting.
	ErrConfigInvalidPublish = errors.New("invalid publish configuration")

	// ErrConfigInvalidServer indicates an invalid API server setting.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrConfigInvalidBus indicates an invalid observer bus setting.
	ErrConfigInvalidBus = errors.New("invalid bus configuration")

	// ErrInvalidTransition indicates a task step or status change outside the state table.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrTaskTerminal indicates an attempt to mutate a task that already completed or failed.
	ErrTaskTerminal = errors.New("task is in a terminal state")

	// ErrTaskNotFound indicates the requested task is not in the observed collection.
	ErrTaskNotFound = errors.New("task not found")

	// ErrOracleUnavailable indicates the validation oracle could not be reached
	// or answered with a transport-level failure.
	ErrOracleUnavailable = errors.New("validation oracle unavailable")

	// ErrOracleResponse indicates the oracle answered but the verdict could not be parsed.
	ErrOracleResponse = errors.New("invalid validation oracle response")

	// ErrOracleMissingKey indicates the oracle API key environment variable is unset.
	ErrOracleMissingKey = errors.New("validation oracle api key not configured")

	// ErrUnknownOracle indicates an unsupported oracle provider name.
	ErrUnknownOracle = errors.New("unknown oracle provider")

	// ErrUnknownScenario indicates a task was requested with an unregistered scenario.
	ErrUnknownScenario = errors.New("unknown task scenario")

	// ErrAgentNotFound indicates the agent id is not on the roster.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrRecordNotFound indicates the store has no record with the given id.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnknownCollection indicates a store collection name that is not recognized.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrUnknownDriver indicates an unsupported storage driver.
	ErrUnknownDriver = errors.New("unknown storage driver")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrStoreCorrupted indicates a collection file could not be decoded.
	ErrStoreCorrupted = errors.New("store data corrupted")

	// ErrInvalidPlatform indicates a social platform the console does not support.
	ErrInvalidPlatform = errors.New("invalid platform")

	// ErrPublishFailed indicates the automation webhook rejected a publish job.
	ErrPublishFailed = errors.New("publish job failed")

	// ErrInvalidArgument indicates a command-line value outside its allowed range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrTasksFailed indicates that one or more tasks triggered from the CLI ended failed.
	ErrTasksFailed = errors.New("one or more tasks failed")
)

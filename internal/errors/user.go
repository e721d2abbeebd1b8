package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice keeps errors.Is traversal order deterministic.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	{
		err: ErrOracleMissingKey,
		info: ErrorInfo{
			Message: "The validation oracle needs an API key.",
			Action:  "Export GEMINI_API_KEY, or run with --oracle policy for offline validation.",
		},
	},
	{
		err: ErrOracleUnavailable,
		info: ErrorInfo{
			Message: "The validation oracle could not be reached.",
			Action:  "Check your network connection and oracle.base_url.",
		},
	},
	{
		err: ErrUnknownOracle,
		info: ErrorInfo{
			Message: "Unknown oracle provider.",
			Action:  "Use one of: policy, gemini, approve, reject.",
		},
	},
	{
		err: ErrUnknownScenario,
		info: ErrorInfo{
			Message: "Unknown task scenario.",
			Action:  "Use one of: community_manager, retrospective.",
		},
	},
	{
		err: ErrAgentNotFound,
		info: ErrorInfo{
			Message: "That agent is not on the roster.",
			Action:  "Run 'astro agents' to list available agents.",
		},
	},
	{
		err: ErrUnknownDriver,
		info: ErrorInfo{
			Message: "Unknown storage driver.",
			Action:  "Set storage.driver to memory, sqlite, or file.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "The data directory is locked by another astro process.",
			Action:  "Wait for the other process to finish, then retry.",
		},
	},
	{
		err: ErrInvalidPlatform,
		info: ErrorInfo{
			Message: "Unsupported platform.",
			Action:  "Use one of: twitter, linkedin, instagram, facebook.",
		},
	},
	{
		err: ErrTasksFailed,
		info: ErrorInfo{
			Message: "One or more agent tasks ended failed.",
			Action:  "Inspect the last log line of each failed task above.",
		},
	},
	{
		err:  ErrConfigNil,
		info: ErrorInfo{Message: "Configuration could not be loaded."},
	},
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action. The action is empty when there is nothing obvious to do.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}

func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

package constants

// Log file names and rotation settings.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.astromedia/logs/astro.log
	CLILogFileName = "astro.log"

	// LogMaxSizeMB is the size at which the CLI log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is how many rotated files are kept.
	LogMaxBackups = 5

	// LogMaxAgeDays is how long rotated files are kept.
	LogMaxAgeDays = 30

	// LogCompress controls gzip compression of rotated files.
	LogCompress = true
)

// Configuration and storage file names.
const (
	// GlobalConfigName is the name of the global configuration file.
	GlobalConfigName = "config.yaml"

	// SQLiteFileName is the database file used by the sqlite store driver.
	SQLiteFileName = "astro.db"
)

// Storage drivers.
const (
	StorageDriverMemory = "memory"
	StorageDriverSQLite = "sqlite"
	StorageDriverFile   = "file"
)

// Oracle providers.
const (
	OracleProviderPolicy  = "policy"
	OracleProviderGemini  = "gemini"
	OracleProviderApprove = "approve"
	OracleProviderReject  = "reject"
)

// Store collections, mirroring the keys the console persists.
const (
	CollectionAssets    = "assets"
	CollectionPosts     = "posts"
	CollectionCampaigns = "campaigns"
	CollectionAccounts  = "accounts"
	CollectionTokens    = "tokens"
)

// Collections returns every collection name the store accepts.
func Collections() []string {
	return []string{
		CollectionAssets,
		CollectionPosts,
		CollectionCampaigns,
		CollectionAccounts,
		CollectionTokens,
	}
}

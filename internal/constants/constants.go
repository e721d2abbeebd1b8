// Package constants provides centralized constant values used throughout astromedia.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by astromedia for organizing data.
const (
	// AppHome is the hidden directory name where astromedia stores all its data.
	// This directory is created in the user's home directory.
	AppHome = ".astromedia"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// DataDir is the directory name where the key-value store keeps its files.
	DataDir = "data"
)

// Agent task (ACM loop) defaults.
const (
	// DefaultMaxAttempts is the attempt ceiling for a task when the caller does not set one.
	DefaultMaxAttempts = 3

	// MaxAttemptsLimit is the largest attempt ceiling the configuration accepts.
	MaxAttemptsLimit = 10

	// DefaultRetryBackoff is the pause between a compliance rejection and the re-observation.
	DefaultRetryBackoff = 1500 * time.Millisecond

	// DefaultValidationTimeout bounds a single call to the validation oracle.
	DefaultValidationTimeout = 30 * time.Second

	// DefaultAgentID is the roster entry that owns tasks triggered without an agent.
	DefaultAgentID = "echo-acm"
)

// Agent registry telemetry.
const (
	// DefaultEfficiencyTick is how often the registry nudges agent efficiency.
	DefaultEfficiencyTick = 3 * time.Second

	// EfficiencyMin is the lower clamp for agent efficiency.
	EfficiencyMin = 85.0

	// EfficiencyMax is the upper clamp for agent efficiency.
	EfficiencyMax = 100.0

	// EfficiencyStep is the largest change applied by one drift tick.
	EfficiencyStep = 1.0
)

// Oracle defaults.
const (
	// DefaultOracleModel is the Gemini model used for compliance checks.
	DefaultOracleModel = "gemini-2.5-flash"

	// DefaultOracleAPIKeyEnvVar is the environment variable holding the Gemini API key.
	DefaultOracleAPIKeyEnvVar = "GEMINI_API_KEY"

	// DefaultOracleBaseURL is the Generative Language API endpoint.
	DefaultOracleBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultOracleTimeout bounds the HTTP round trip to the oracle.
	DefaultOracleTimeout = 20 * time.Second

	// DefaultOracleCacheSize is the number of verdicts kept by the LRU cache.
	DefaultOracleCacheSize = 256

	// DefaultOracleCacheTTL is how long a cached verdict stays valid.
	DefaultOracleCacheTTL = 5 * time.Minute
)

// Publishing (simulated automation backend) defaults.
const (
	// DefaultPublishDelay is how long a publish job takes before it reports back.
	DefaultPublishDelay = 5 * time.Second

	// DefaultPublishSuccessRate is the probability that a publish job succeeds.
	DefaultPublishSuccessRate = 0.9

	// DefaultPublishWebhookTimeout bounds the call to the automation webhook.
	DefaultPublishWebhookTimeout = 10 * time.Second

	// JobIDPrefix prefixes automation job identifiers.
	JobIDPrefix = "n8n_job_"

	// TokenPrefix prefixes the simulated OAuth tokens issued on connect.
	TokenPrefix = "tok_live_"

	// CampaignPlatformOrchestrated is the platform label of campaigns
	// created in the console.
	CampaignPlatformOrchestrated = "Multi-Agent n8n"
)

// Server and bus defaults.
const (
	// DefaultServerHost is the interface the API binds to.
	DefaultServerHost = "localhost"

	// DefaultServerPort is the TCP port of the API.
	DefaultServerPort = 8080

	// DefaultServerTimeout is used for both read and write timeouts.
	DefaultServerTimeout = 30 * time.Second

	// DefaultSubscriberBuffer is the channel buffer for each bus subscriber.
	DefaultSubscriberBuffer = 64

	// DefaultNATSSubject is the subject snapshots are exported to.
	DefaultNATSSubject = "astromedia.tasks"
)

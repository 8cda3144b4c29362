package config

import "time"

// Application constants
const (
	AppName    = "Advising Dashboard"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment override (ADVDASH_SERVER_PORT, ...).
	EnvPrefix = "ADVDASH"

	// ConfigEnvVar names the environment variable holding an explicit config file path.
	ConfigEnvVar = "ADVDASH_CONFIG"

	DefaultMaxUploadBytes = 20 << 20
	DefaultMaxDatasets    = 32
	DefaultDatasetTTL     = 4 * time.Hour
	DefaultJanitorPeriod  = time.Minute

	DefaultTopWords    = 15
	DefaultCloudWords  = 100
	DefaultPreviewRows = 5
	DefaultMinWordLen  = 2

	WebSocketWriteWait  = 10 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second
)

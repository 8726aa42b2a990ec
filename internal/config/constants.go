package config

// Constants defining default values for application configuration
const (
	DefaultSeedPath = "./tenants.json"
	DefaultDBPath   = "./autoposter.db"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultWorkerCount = 4  // Tenants processed concurrently
	DefaultInterval    = 15 // Minutes between pipeline cycles

	// Seconds between successive item publishes for one tenant, so
	// downstream transports are never hammered.
	DefaultPublishDelaySec = 2

	DefaultFetchTimeoutSec   = 10 // Feed downloads
	DefaultResolveTimeoutSec = 15 // Photo/logo/font byte downloads
	DefaultPublishTimeoutSec = 30 // Artifact uploads

	DefaultMaxItemsPerFeed = 50
	DefaultUserAgent       = "BrandpostAutoposter/1.0"

	DefaultLogLevel = "debug"
)

package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "mise"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr    = "localhost:6379"
	DefaultRedisDB      = 0
	DefaultSlotCacheTTL = 30 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCurrency           = "usd"
	DefaultSlotGranularityMin = 30

	// Fee rates are basis points (10000 bp = 100%) so money math stays
	// integer end to end.
	DefaultServiceFeeBP      = 1000 // 10% charged to the chef per line item
	DefaultPlatformFeeBP     = 1500 // 15% withheld from the manager payout
	DefaultProcessorFeeBP    = 290  // card processor's variable share
	DefaultProcessorFeeFixed = 30   // card processor's fixed cents per charge

	// Overstay penalty multiplier, basis points. 15000 = 1.5x the daily rate.
	// Operational policy, never hard-coded in the tracker.
	DefaultOverstayMultiplierBP = 15000

	DefaultEligibilityBaseURL = "http://localhost:9090"

	DefaultKafkaEventTopic = "mise.booking.events"
	DefaultKafkaDLQTopic   = "mise.booking.events.dlq"

	DefaultPaginationLimit = 100
)

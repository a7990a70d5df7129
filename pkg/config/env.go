package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr    = "REDIS_ADDR"
	EnvRedisDB      = "REDIS_DB"
	EnvSlotCacheTTL = "SLOT_CACHE_TTL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRPS   = "RATE_LIMIT_RPS"
	EnvRateLimitBurst = "RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCurrency             = "CURRENCY"
	EnvSlotGranularityMin   = "SLOT_GRANULARITY_MIN"
	EnvServiceFeeBP         = "SERVICE_FEE_BP"
	EnvPlatformFeeBP        = "PLATFORM_FEE_BP"
	EnvProcessorFeeBP       = "PROCESSOR_FEE_BP"
	EnvProcessorFeeFixed    = "PROCESSOR_FEE_FIXED_CENTS"
	EnvOverstayMultiplierBP = "OVERSTAY_MULTIPLIER_BP"

	EnvEligibilityBaseURL = "ELIGIBILITY_BASE_URL"
	EnvStripeKey          = "STRIPE_KEY"

	EnvKafkaBrokers    = "KAFKA_BROKERS"
	EnvKafkaEventTopic = "KAFKA_EVENT_TOPIC"
	EnvKafkaDLQTopic   = "KAFKA_DLQ_TOPIC"
)

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mise/pkg/client"
	"mise/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr    string
	RedisDB      int
	SlotCacheTTL time.Duration

	Port string

	RateLimitRPS   int
	RateLimitBurst int

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Currency             string
	SlotGranularityMin   int
	ServiceFeeBP         int64
	PlatformFeeBP        int64
	ProcessorFeeBP       int64
	ProcessorFeeFixed    int64
	OverstayMultiplierBP int64

	EligibilityBaseURL string
	StripeKey          string

	KafkaBrokers    []string
	KafkaEventTopic string
	KafkaDLQTopic   string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:    getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisDB:      getEnvNum(EnvRedisDB, DefaultRedisDB),
		SlotCacheTTL: getEnvDuration(EnvSlotCacheTTL, DefaultSlotCacheTTL),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRPS:   getEnvNum(EnvRateLimitRPS, DefaultRateLimitRPS),
		RateLimitBurst: getEnvNum(EnvRateLimitBurst, DefaultRateLimitBurst),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Currency:             getEnvStr(EnvCurrency, DefaultCurrency),
		SlotGranularityMin:   getEnvNum(EnvSlotGranularityMin, DefaultSlotGranularityMin),
		ServiceFeeBP:         getEnvInt64(EnvServiceFeeBP, DefaultServiceFeeBP),
		PlatformFeeBP:        getEnvInt64(EnvPlatformFeeBP, DefaultPlatformFeeBP),
		ProcessorFeeBP:       getEnvInt64(EnvProcessorFeeBP, DefaultProcessorFeeBP),
		ProcessorFeeFixed:    getEnvInt64(EnvProcessorFeeFixed, DefaultProcessorFeeFixed),
		OverstayMultiplierBP: getEnvInt64(EnvOverstayMultiplierBP, DefaultOverstayMultiplierBP),

		EligibilityBaseURL: getEnvStr(EnvEligibilityBaseURL, DefaultEligibilityBaseURL),
		StripeKey:          getEnvStr(EnvStripeKey, ""),

		KafkaBrokers:    getEnvList(EnvKafkaBrokers, nil),
		KafkaEventTopic: getEnvStr(EnvKafkaEventTopic, DefaultKafkaEventTopic),
		KafkaDLQTopic:   getEnvStr(EnvKafkaDLQTopic, DefaultKafkaDLQTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisDB)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errs = append(errs, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRPS must be positive, got: %d", cfg.RateLimitRPS))
	}
	if cfg.RateLimitBurst < cfg.RateLimitRPS {
		errs = append(errs, fmt.Sprintf("RateLimitBurst (%d) must be >= RateLimitRPS (%d)", cfg.RateLimitBurst, cfg.RateLimitRPS))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.Currency == "" {
		errs = append(errs, "Currency cannot be empty")
	}
	if cfg.SlotGranularityMin <= 0 || cfg.SlotGranularityMin > 24*60 {
		errs = append(errs, fmt.Sprintf("SlotGranularityMin must be between 1 and 1440, got: %d", cfg.SlotGranularityMin))
	}
	if cfg.ServiceFeeBP < 0 || cfg.ServiceFeeBP > 10000 {
		errs = append(errs, fmt.Sprintf("ServiceFeeBP must be between 0 and 10000, got: %d", cfg.ServiceFeeBP))
	}
	if cfg.PlatformFeeBP < 0 || cfg.PlatformFeeBP > 10000 {
		errs = append(errs, fmt.Sprintf("PlatformFeeBP must be between 0 and 10000, got: %d", cfg.PlatformFeeBP))
	}
	if cfg.ProcessorFeeBP < 0 || cfg.ProcessorFeeBP > 10000 {
		errs = append(errs, fmt.Sprintf("ProcessorFeeBP must be between 0 and 10000, got: %d", cfg.ProcessorFeeBP))
	}
	if cfg.ProcessorFeeFixed < 0 {
		errs = append(errs, fmt.Sprintf("ProcessorFeeFixed cannot be negative, got: %d", cfg.ProcessorFeeFixed))
	}
	if cfg.OverstayMultiplierBP <= 0 {
		errs = append(errs, fmt.Sprintf("OverstayMultiplierBP must be positive, got: %d", cfg.OverstayMultiplierBP))
	}

	if cfg.EligibilityBaseURL == "" {
		errs = append(errs, "EligibilityBaseURL cannot be empty")
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"slot_cache_ttl", cfg.SlotCacheTTL,
		"port", cfg.Port,
		"rate_limit_rps", cfg.RateLimitRPS,
		"rate_limit_burst", cfg.RateLimitBurst,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"currency", cfg.Currency,
		"slot_granularity_min", cfg.SlotGranularityMin,
		"service_fee_bp", cfg.ServiceFeeBP,
		"platform_fee_bp", cfg.PlatformFeeBP,
		"processor_fee_bp", cfg.ProcessorFeeBP,
		"processor_fee_fixed_cents", cfg.ProcessorFeeFixed,
		"overstay_multiplier_bp", cfg.OverstayMultiplierBP,
		"eligibility_base_url", cfg.EligibilityBaseURL,
		"stripe_key_set", cfg.StripeKey != "",
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_event_topic", cfg.KafkaEventTopic,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}

package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "stayworks"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBrokers         = "localhost:9092"
	DefaultKafkaAdmissionsTopic = "stayworks.admissions"

	DefaultPort = "8080"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Business policy knobs. The usability threshold and minimum stay are
	// product decisions, so they stay configurable rather than hard-coded.
	DefaultMinUsableDays            = 14
	DefaultMinStayNights            = 30
	DefaultNextAvailableHorizonDays = 60

	DefaultAdmissionLockTTL = 10 * time.Second
	DefaultCapacityCacheTTL = 5 * time.Minute

	DefaultPaginationLimit = 100
)

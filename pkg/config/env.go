package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr = "REDIS_ADDR"
	EnvRedisDB   = "REDIS_DB"

	EnvKafkaBrokers         = "KAFKA_BROKERS"
	EnvKafkaAdmissionsTopic = "KAFKA_ADMISSIONS_TOPIC"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMinUsableDays        = "MIN_USABLE_DAYS"
	EnvMinStayNights        = "MIN_STAY_NIGHTS"
	EnvNextAvailableHorizon = "NEXT_AVAILABLE_HORIZON_DAYS"
	EnvAdmissionLockTTL     = "ADMISSION_LOCK_TTL"
	EnvCapacityCacheTTL     = "CAPACITY_CACHE_TTL"
)

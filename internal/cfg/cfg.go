package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/jimlawless/whereami"
)

// Варианты хранилища корзины
const (
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
	StoreBackendMemory   = "memory" // только для локального запуска, теряется при перезапуске
)

type Config struct {
	Minio    *MinIOCfg
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	Db       *PGDBCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Commerce *CommerceCfg
	Cart     *CartCfg
	Checkout *CheckoutCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для архива чеков
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	SwaggerURL   string
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration // TTL кэша каталога
	CartTTL     time.Duration // 0: корзина хранится бессрочно
}

// CommerceCfg настраивает клиент внешнего бэкенда.
type CommerceCfg struct {
	BaseURL        string
	RequestTimeout time.Duration
	OrderTimeout   time.Duration
	MaxRetries     int
	MaxConcurrent  int
}

type CartCfg struct {
	StoreBackend   string
	IdleTTL        time.Duration // через сколько неактивная сессия выгружается из памяти
	JanitorPeriod  time.Duration
	StoreTimeout   time.Duration
	SessionHeader  string
	DefaultAddress string
}

type CheckoutCfg struct {
	ClearCartOnSuccess bool // политика очистки корзины после успешного заказа, по умолчанию выключена
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	cart, err := loadCartCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	commerce, err := loadCommerceCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	checkout, err := loadCheckoutCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cfg := &Config{
		Http:     http,
		Grpc:     loadGRPCConfig(),
		Commerce: commerce,
		Cart:     cart,
		Checkout: checkout,
	}

	// В режиме memory приложение не подключается к внешней инфраструктуре
	if cart.StoreBackend == StoreBackendMemory {
		return cfg, nil
	}

	if err := cfg.loadInfra(log); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return cfg, nil
}

func (c *Config) loadInfra(log logger.Logger) error {
	var err error

	if c.Db, err = loadPGDBCfg(log); err != nil {
		return err
	}

	if c.Redis, err = loadRedisCfg(log); err != nil {
		return err
	}

	if c.Minio, err = loadMinIOCfg(log); err != nil {
		return err
	}

	if c.Kafka, err = loadKafkaCfg(); err != nil {
		return err
	}

	return nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "cart.checkout"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
		defaultBucket   = "receipts"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultSwaggerURL   = "http://localhost:8080/swagger/doc.json"
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		SwaggerURL:   getEnvOrDefault("SWAGGER_URL", defaultSwaggerURL),
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
		defaultCartTTL      = 0
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	cartTTL, err := parseDurationEnv("CART_TTL", defaultCartTTL)
	if err != nil {
		log.Errorf(err, "invalid CART_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProductTTL:  productTTL,
		CartTTL:     cartTTL,
	}, nil
}

func loadCommerceCfg(log logger.Logger) (*CommerceCfg, error) {
	const (
		defaultBaseURL        = "http://localhost:8001"
		defaultRequestTimeout = 5 * time.Second
		defaultOrderTimeout   = 15 * time.Second
		defaultMaxRetries     = 3
		defaultMaxConcurrent  = 8
	)

	requestTimeout, err := parseDurationEnv("COMMERCE_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		log.Errorf(err, "invalid COMMERCE_REQUEST_TIMEOUT")
		return nil, err
	}

	orderTimeout, err := parseDurationEnv("COMMERCE_ORDER_TIMEOUT", defaultOrderTimeout)
	if err != nil {
		log.Errorf(err, "invalid COMMERCE_ORDER_TIMEOUT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("COMMERCE_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid COMMERCE_MAX_RETRIES")
		return nil, err
	}

	maxConcurrent, err := parseIntEnv("COMMERCE_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		log.Errorf(err, "invalid COMMERCE_MAX_CONCURRENT")
		return nil, err
	}

	return &CommerceCfg{
		BaseURL:        strings.TrimRight(getEnvOrDefault("COMMERCE_BASE_URL", defaultBaseURL), "/"),
		RequestTimeout: requestTimeout,
		OrderTimeout:   orderTimeout,
		MaxRetries:     maxRetries,
		MaxConcurrent:  maxConcurrent,
	}, nil
}

func loadCartCfg(log logger.Logger) (*CartCfg, error) {
	const (
		defaultStoreBackend    = StoreBackendPostgres
		defaultIdleTTL         = 30 * time.Minute
		defaultJanitorPeriod   = time.Minute
		defaultStoreTimeout    = 3 * time.Second
		defaultSessionHeader   = "X-Session-ID"
		defaultDeliveryAddress = "Default Address"
	)

	backend := strings.ToLower(getEnvOrDefault("CART_STORE", defaultStoreBackend))
	switch backend {
	case StoreBackendPostgres, StoreBackendRedis, StoreBackendMemory:
	default:
		err := fmt.Errorf("CART_STORE must be one of %q, %q, %q, got %q", StoreBackendPostgres, StoreBackendRedis, StoreBackendMemory, backend)
		log.Errorf(err, "invalid CART_STORE")
		return nil, err
	}

	idleTTL, err := parseDurationEnv("CART_IDLE_TTL", defaultIdleTTL)
	if err != nil {
		log.Errorf(err, "invalid CART_IDLE_TTL")
		return nil, err
	}

	janitorPeriod, err := parseDurationEnv("CART_JANITOR_PERIOD", defaultJanitorPeriod)
	if err != nil {
		log.Errorf(err, "invalid CART_JANITOR_PERIOD")
		return nil, err
	}

	storeTimeout, err := parseDurationEnv("CART_STORE_TIMEOUT", defaultStoreTimeout)
	if err != nil {
		log.Errorf(err, "invalid CART_STORE_TIMEOUT")
		return nil, err
	}

	return &CartCfg{
		StoreBackend:   backend,
		IdleTTL:        idleTTL,
		JanitorPeriod:  janitorPeriod,
		StoreTimeout:   storeTimeout,
		SessionHeader:  getEnvOrDefault("SESSION_HEADER", defaultSessionHeader),
		DefaultAddress: getEnvOrDefault("DEFAULT_DELIVERY_ADDRESS", defaultDeliveryAddress),
	}, nil
}

func loadCheckoutCfg(log logger.Logger) (*CheckoutCfg, error) {
	clear, err := strconv.ParseBool(getEnvOrDefault("CHECKOUT_CLEAR_CART_ON_SUCCESS", "false"))
	if err != nil {
		log.Errorf(err, "invalid CHECKOUT_CLEAR_CART_ON_SUCCESS")
		return nil, err
	}

	return &CheckoutCfg{ClearCartOnSuccess: clear}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.Wrap(key, e.ErrIncorrectEnvVariable)
	}

	return intValue, nil
}

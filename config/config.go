package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port              string
	StorageBackend    string // file, mysql or memory
	DataDir           string
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	JWTSecret         string
	RabbitMQURL       string
	OrderExchange     string
	OrderQueue        string
	DeadLetterQueue   string
	DelayExchange     string
	MaxPriority       int
	LowStockThreshold int
	PaymentCheckDelay time.Duration

	// Scanner tuning.
	ScannerDevice         string // path to the wedge/serial device, "-" for stdin, "" to disable
	ScannerUserID         string // user attributed to device-originated scans
	ScannerWedge          bool   // treat the device as a keyboard wedge instead of line-oriented
	ScannerAutoClose      bool
	ScannerAcquireTimeout time.Duration
	ScannerSettleDelay    time.Duration
	WedgeIdleFlush        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		StorageBackend:    getEnv("STORAGE_BACKEND", "file"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		DBUser:            getEnv("DB_USER", "root"),
		DBPassword:        getEnvFromFile("DB_PASSWORD_FILE", "DB_PASSWORD", ""),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBName:            getEnv("DB_NAME", "quickscan"),
		JWTSecret:         getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "dev-secret-change-me"),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		OrderExchange:     getEnv("ORDER_EXCHANGE", "scan_orders_exchange"),
		OrderQueue:        getEnv("ORDER_QUEUE", "scan_orders_queue"),
		DeadLetterQueue:   getEnv("DEAD_LETTER_QUEUE", "scan_dead_letter_queue"),
		DelayExchange:     getEnv("DELAY_EXCHANGE", "scan_delay_exchange"),
		MaxPriority:       10,
		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 3),
		PaymentCheckDelay: getEnvDuration("PAYMENT_CHECK_DELAY", 15*time.Minute),

		ScannerDevice:         getEnv("SCANNER_DEVICE", "-"),
		ScannerUserID:         getEnv("SCANNER_USER_ID", "quickscan-device"),
		ScannerWedge:          getEnv("SCANNER_WEDGE", "false") == "true",
		ScannerAutoClose:      getEnv("SCANNER_AUTO_CLOSE", "true") == "true",
		ScannerAcquireTimeout: getEnvDuration("SCANNER_ACQUIRE_TIMEOUT", 5*time.Second),
		ScannerSettleDelay:    getEnvDuration("SCANNER_SETTLE_DELAY", 500*time.Millisecond),
		WedgeIdleFlush:        getEnvDuration("WEDGE_IDLE_FLUSH", 300*time.Millisecond),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(envKey, defaultValue)
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

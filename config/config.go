package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"stockdesk/internal/domain"
)

// Backends aceitos para o contador de números de documento.
const (
	SequenceBackendFile     = "file"
	SequenceBackendRedis    = "redis"
	SequenceBackendPostgres = "postgres"
)

// Config armazena todas as configurações do stockdesk.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Product Service (catálogo, ledger de estoque, usuários)
	ProductServiceURL     string
	ProductServiceTimeout time.Duration

	// Sequência de números de documento
	SequenceBackend string
	SequenceFile    string
	SequenceKey     string

	// Banco de Dados (PostgreSQL), obrigatório apenas para o backend postgres
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr    string
	CacheTimeout time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Requisição
	Locations      []domain.Location
	WithdrawalNote string
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
// Retorna erro quando uma variável obrigatória está ausente ou inválida.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Product Service
		ProductServiceURL:     strings.TrimRight(getEnv("PRODUCT_SERVICE_URL", ""), "/"),
		ProductServiceTimeout: getDurationEnv("PRODUCT_SERVICE_TIMEOUT_SEC", 10) * time.Second,

		// 3. Sequência
		SequenceBackend: strings.ToLower(getEnv("SEQUENCE_BACKEND", SequenceBackendFile)),
		SequenceFile:    getEnv("SEQUENCE_FILE", "./data/sequence.json"),
		SequenceKey:     getEnv("SEQUENCE_KEY", "lastBillNumber"),

		// 4. Banco de Dados (PostgreSQL)
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 5. Cache (Redis)
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTimeout: getDurationEnv("CACHE_TIMEOUT_SEC", 10) * time.Second,

		// 6. Segurança (JWT)
		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,

		// 7. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,

		// 8. Requisição
		Locations:      getLocationsEnv("LOCATIONS"),
		WithdrawalNote: getEnv("DEFAULT_WITHDRAWAL_NOTE", "Stock withdrawal"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ProductServiceURL == "" {
		return missing("PRODUCT_SERVICE_URL")
	}
	if c.JWTSecretKey == "" {
		return missing("JWT_SECRET_KEY")
	}

	switch c.SequenceBackend {
	case SequenceBackendFile, SequenceBackendRedis:
	case SequenceBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("erro de configuração: DATABASE_URL é obrigatória com SEQUENCE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("erro de configuração: SEQUENCE_BACKEND inválido %q (use file, redis ou postgres)", c.SequenceBackend)
	}
	return nil
}

func missing(key string) error {
	return fmt.Errorf("erro de configuração: a variável de ambiente %s deve ser definida", key)
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getLocationsEnv lê a lista de filiais separada por "|". Vazia usa as filiais padrão.
func getLocationsEnv(key string) []domain.Location {
	var locations []domain.Location
	for _, part := range strings.Split(getEnv(key, ""), "|") {
		if name := strings.TrimSpace(part); name != "" {
			locations = append(locations, domain.Location(name))
		}
	}
	if len(locations) == 0 {
		return append([]domain.Location(nil), domain.DefaultLocations...)
	}
	return locations
}

// LoadDatabaseURL lê apenas DATABASE_URL, para o comando de migrações.
func LoadDatabaseURL() (string, error) {
	url := getEnv("DATABASE_URL", "")
	if url == "" {
		return "", missing("DATABASE_URL")
	}
	return url, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"parseview/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Vendor  VendorConfig
	Upload  UploadConfig
	Store   StoreConfig
	Redis   RedisConfig
	DB      DBConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Session SessionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// VendorConfig holds settings for the external document parsing API.
type VendorConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	APIURL        string `mapstructure:"api_url"`
	Model         string `mapstructure:"model"`
	OCR           string `mapstructure:"ocr"`
	ExtractImages bool   `mapstructure:"extract_images"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
}

// Timeout returns the vendor HTTP timeout.
func (v *VendorConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSecs) * time.Second
}

// UploadConfig holds upload validation and temp file settings.
type UploadConfig struct {
	MaxFileSizeMB    int64  `mapstructure:"max_file_size_mb"`
	MinFileSizeBytes int64  `mapstructure:"min_file_size_bytes"`
	TempDir          string `mapstructure:"temp_dir"`
}

// MaxBytes returns the maximum accepted upload size in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// Result store backends.
const (
	StoreBackendMemory   = "memory"
	StoreBackendDisk     = "disk"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendS3       = "s3"
)

// StoreConfig selects and tunes the session result store.
// A zero TTL keeps results until they are replaced or discarded.
type StoreConfig struct {
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	Dir       string        `mapstructure:"dir"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// RedisConfig holds Redis connection settings for the redis store backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// DBConfig holds PostgreSQL connection settings for the postgres store backend.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for the s3 store backend.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SessionConfig holds the session cookie settings.
type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	Secure     bool          `mapstructure:"secure"`
}

// Load reads configuration from a .env file, an optional parseview.yaml and
// environment variables with the PARSEVIEW_ prefix, in increasing precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("parseview")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("PARSEVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config file: %v", domain.ErrConfig, err)
		}
	}

	// Bind environment variables explicitly for nested keys. The vendor key and
	// URL also accept the original UPSTAGE_* names.
	envBindings := map[string][]string{
		"server.port":                {"PARSEVIEW_SERVER_PORT"},
		"server.read_timeout":        {"PARSEVIEW_SERVER_READ_TIMEOUT"},
		"server.write_timeout":       {"PARSEVIEW_SERVER_WRITE_TIMEOUT"},
		"server.environment":         {"PARSEVIEW_SERVER_ENVIRONMENT"},
		"vendor.provider":            {"PARSEVIEW_VENDOR_PROVIDER"},
		"vendor.api_key":             {"PARSEVIEW_VENDOR_API_KEY", "UPSTAGE_API_KEY"},
		"vendor.api_url":             {"PARSEVIEW_VENDOR_API_URL", "UPSTAGE_API_URL"},
		"vendor.model":               {"PARSEVIEW_VENDOR_MODEL"},
		"vendor.ocr":                 {"PARSEVIEW_VENDOR_OCR"},
		"vendor.extract_images":      {"PARSEVIEW_VENDOR_EXTRACT_IMAGES"},
		"vendor.timeout_secs":        {"PARSEVIEW_VENDOR_TIMEOUT_SECS"},
		"upload.max_file_size_mb":    {"PARSEVIEW_UPLOAD_MAX_FILE_SIZE_MB"},
		"upload.min_file_size_bytes": {"PARSEVIEW_UPLOAD_MIN_FILE_SIZE_BYTES"},
		"upload.temp_dir":            {"PARSEVIEW_UPLOAD_TEMP_DIR"},
		"store.backend":              {"PARSEVIEW_STORE_BACKEND"},
		"store.ttl":                  {"PARSEVIEW_STORE_TTL"},
		"store.dir":                  {"PARSEVIEW_STORE_DIR"},
		"store.key_prefix":           {"PARSEVIEW_STORE_KEY_PREFIX"},
		"redis.addr":                 {"PARSEVIEW_REDIS_ADDR"},
		"redis.password":             {"PARSEVIEW_REDIS_PASSWORD"},
		"redis.db":                   {"PARSEVIEW_REDIS_DB"},
		"redis.pool_size":            {"PARSEVIEW_REDIS_POOL_SIZE"},
		"db.host":                    {"PARSEVIEW_DB_HOST"},
		"db.port":                    {"PARSEVIEW_DB_PORT"},
		"db.user":                    {"PARSEVIEW_DB_USER"},
		"db.password":                {"PARSEVIEW_DB_PASSWORD"},
		"db.name":                    {"PARSEVIEW_DB_NAME"},
		"db.sslmode":                 {"PARSEVIEW_DB_SSLMODE"},
		"db.max_open":                {"PARSEVIEW_DB_MAX_OPEN"},
		"db.max_idle":                {"PARSEVIEW_DB_MAX_IDLE"},
		"s3.region":                  {"PARSEVIEW_S3_REGION"},
		"s3.bucket":                  {"PARSEVIEW_S3_BUCKET"},
		"s3.endpoint":                {"PARSEVIEW_S3_ENDPOINT"},
		"s3.access_key":              {"PARSEVIEW_S3_ACCESS_KEY"},
		"s3.secret_key":              {"PARSEVIEW_S3_SECRET_KEY"},
		"log.level":                  {"PARSEVIEW_LOG_LEVEL"},
		"log.format":                 {"PARSEVIEW_LOG_FORMAT"},
		"cors.allowed_origins":       {"PARSEVIEW_CORS_ALLOWED_ORIGINS"},
		"session.cookie_name":        {"PARSEVIEW_SESSION_COOKIE_NAME"},
		"session.max_age":            {"PARSEVIEW_SESSION_MAX_AGE"},
		"session.secure":             {"PARSEVIEW_SESSION_SECURE"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "11m")
	v.SetDefault("server.environment", "development")

	// Vendor defaults
	v.SetDefault("vendor.provider", "upstage")
	v.SetDefault("vendor.api_key", "")
	v.SetDefault("vendor.api_url", "https://api.upstage.ai/v1/document-digitization")
	v.SetDefault("vendor.model", "document-parse")
	v.SetDefault("vendor.ocr", "force")
	v.SetDefault("vendor.extract_images", true)
	v.SetDefault("vendor.timeout_secs", 600)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 50)
	v.SetDefault("upload.min_file_size_bytes", 100)
	v.SetDefault("upload.temp_dir", "")

	// Store defaults
	v.SetDefault("store.backend", StoreBackendMemory)
	v.SetDefault("store.ttl", "0s")
	v.SetDefault("store.dir", "storage/sessions")
	v.SetDefault("store.key_prefix", "parseview:session:")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "parseview")
	v.SetDefault("db.password", "parseview_secret")
	v.SetDefault("db.name", "parseview_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "parseview-results")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:8501,http://127.0.0.1:8501,http://localhost:3000")

	// Session defaults
	v.SetDefault("session.cookie_name", "parseview_session")
	v.SetDefault("session.max_age", "24h")
	v.SetDefault("session.secure", false)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PARSEVIEW_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PARSEVIEW_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Vendor = VendorConfig{
		Provider:      v.GetString("vendor.provider"),
		APIKey:        strings.TrimSpace(v.GetString("vendor.api_key")),
		APIURL:        v.GetString("vendor.api_url"),
		Model:         v.GetString("vendor.model"),
		OCR:           v.GetString("vendor.ocr"),
		ExtractImages: v.GetBool("vendor.extract_images"),
		TimeoutSecs:   v.GetInt("vendor.timeout_secs"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB:    v.GetInt64("upload.max_file_size_mb"),
		MinFileSizeBytes: v.GetInt64("upload.min_file_size_bytes"),
		TempDir:          v.GetString("upload.temp_dir"),
	}
	cfg.Store = StoreConfig{
		Backend:   strings.ToLower(v.GetString("store.backend")),
		TTL:       v.GetDuration("store.ttl"),
		Dir:       v.GetString("store.dir"),
		KeyPrefix: v.GetString("store.key_prefix"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		PoolSize: v.GetInt("redis.pool_size"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitCSV(v.GetString("cors.allowed_origins")),
	}
	cfg.Session = SessionConfig{
		CookieName: v.GetString("session.cookie_name"),
		MaxAge:     v.GetDuration("session.max_age"),
		Secure:     v.GetBool("session.secure"),
	}
	return cfg
}

// Validate checks settings that must be present before the server starts.
// Every failure wraps domain.ErrConfig and is fatal at startup.
func (c *Config) Validate() error {
	if c.Vendor.APIKey == "" {
		return fmt.Errorf("%w: vendor API key is required (set PARSEVIEW_VENDOR_API_KEY or UPSTAGE_API_KEY)", domain.ErrConfig)
	}
	if c.Vendor.APIURL == "" {
		return fmt.Errorf("%w: vendor API URL is required", domain.ErrConfig)
	}
	if !domain.ValidOCRModes[domain.OCRMode(c.Vendor.OCR)] {
		return fmt.Errorf("%w: vendor.ocr must be 'auto' or 'force', got %q", domain.ErrConfig, c.Vendor.OCR)
	}
	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("%w: upload.max_file_size_mb must be positive", domain.ErrConfig)
	}
	if c.Upload.MinFileSizeBytes < 0 || c.Upload.MinFileSizeBytes >= c.Upload.MaxBytes() {
		return fmt.Errorf("%w: upload.min_file_size_bytes must be between 0 and the maximum size", domain.ErrConfig)
	}
	switch c.Store.Backend {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres:
	case StoreBackendDisk:
		if c.Store.Dir == "" {
			return fmt.Errorf("%w: store.dir is required for the disk backend", domain.ErrConfig)
		}
	case StoreBackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("%w: s3.bucket is required for the s3 backend", domain.ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", domain.ErrConfig, c.Store.Backend)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("%w: store.ttl must not be negative", domain.ErrConfig)
	}
	return nil
}

// DefaultOptions returns the parse options used when an upload does not override them.
func (c *Config) DefaultOptions() domain.ParseOptions {
	return domain.ParseOptions{
		OCR:           domain.OCRMode(c.Vendor.OCR),
		ExtractImages: c.Vendor.ExtractImages,
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

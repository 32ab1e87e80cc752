package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig holds environment driven configuration values.
// Secrets never have defaults inside code and must be provided via the config file or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	SessionSecret      string
	RateLimitPerMinute int
	AllowedOrigins     []string
	AdminUsernames     []string
	TLSDomains         []string
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Redis backs the page cache and the token revocation list
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Page cache for the global feed, in seconds
	PageCacheSeconds int
	// Media storage
	StorageType   string
	MediaRoot     string
	MediaURL      string
	MediaMaxWidth int
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PublicURL   string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// fileConfig mirrors the grouped layout of config/config.yaml and config/config.json.
type fileConfig struct {
	App struct {
		AppPort            string   `yaml:"AppPort" json:"AppPort"`
		JWTSecret          string   `yaml:"JWTSecret" json:"JWTSecret"`
		SessionSecret      string   `yaml:"SessionSecret" json:"SessionSecret"`
		RateLimitPerMinute int      `yaml:"RateLimitPerMinute" json:"RateLimitPerMinute"`
		AllowedOrigins     []string `yaml:"AllowedOrigins" json:"AllowedOrigins"`
		AdminUsernames     []string `yaml:"AdminUsernames" json:"AdminUsernames"`
		TLSDomains         []string `yaml:"TLSDomains" json:"TLSDomains"`
	} `yaml:"app" json:"app"`
	Database struct {
		Driver      string `yaml:"Driver" json:"Driver"`
		DatabaseURI string `yaml:"DatabaseURI" json:"DatabaseURI"`
		DBHost      string `yaml:"DBHost" json:"DBHost"`
		DBPort      string `yaml:"DBPort" json:"DBPort"`
		DBUser      string `yaml:"DBUser" json:"DBUser"`
		DBPassword  string `yaml:"DBPassword" json:"DBPassword"`
		DBName      string `yaml:"DBName" json:"DBName"`
	} `yaml:"database" json:"database"`
	Gin struct {
		Mode    string `yaml:"Mode" json:"Mode"`
		LogPath string `yaml:"LogPath" json:"LogPath"`
	} `yaml:"gin" json:"gin"`
	Redis struct {
		RedisHost     string `yaml:"RedisHost" json:"RedisHost"`
		RedisPort     int    `yaml:"RedisPort" json:"RedisPort"`
		RedisDB       int    `yaml:"RedisDB" json:"RedisDB"`
		RedisPassword string `yaml:"RedisPassword" json:"RedisPassword"`
	} `yaml:"redis" json:"redis"`
	Cache struct {
		PageSeconds int `yaml:"PageSeconds" json:"PageSeconds"`
	} `yaml:"cache" json:"cache"`
	Media struct {
		StorageType string `yaml:"StorageType" json:"StorageType"`
		Root        string `yaml:"Root" json:"Root"`
		URL         string `yaml:"URL" json:"URL"`
		MaxWidth    int    `yaml:"MaxWidth" json:"MaxWidth"`
	} `yaml:"media" json:"media"`
	S3 struct {
		Bucket    string `yaml:"Bucket" json:"Bucket"`
		Region    string `yaml:"Region" json:"Region"`
		Endpoint  string `yaml:"Endpoint" json:"Endpoint"`
		AccessKey string `yaml:"AccessKey" json:"AccessKey"`
		SecretKey string `yaml:"SecretKey" json:"SecretKey"`
		PublicURL string `yaml:"PublicURL" json:"PublicURL"`
	} `yaml:"s3" json:"s3"`
	Log struct {
		Level      string `yaml:"Level" json:"Level"`
		Path       string `yaml:"Path" json:"Path"`
		MaxSizeMB  int    `yaml:"MaxSizeMB" json:"MaxSizeMB"`
		MaxBackups int    `yaml:"MaxBackups" json:"MaxBackups"`
		MaxAgeDays int    `yaml:"MaxAgeDays" json:"MaxAgeDays"`
		Compress   bool   `yaml:"Compress" json:"Compress"`
	} `yaml:"log" json:"log"`
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration once during boot and exits on invalid input.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	path := filepath.Join("config", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join("config", "config.json")
	}
	c, err := LoadFrom(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// LoadFrom builds a configuration from the given file (missing file is fine),
// then defaults, then environment overrides.
func LoadFrom(path string) (AppConfig, error) {
	var c AppConfig
	if err := loadConfigFile(path, &c); err != nil {
		return c, err
	}
	applyDefaults(&c)
	if err := applyEnvOverrides(&c); err != nil {
		return c, err
	}

	if c.JWTSecret == "" {
		return c, errors.New("JWT_SECRET must be set")
	}
	if c.SessionSecret == "" {
		return c, errors.New("SESSION_SECRET must be set")
	}
	return c, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadConfigFile reads a YAML or JSON file into out. A missing file is silently ignored.
func loadConfigFile(path string, out *AppConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &fc)
	default:
		err = json.Unmarshal(raw, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	out.AppPort = fc.App.AppPort
	out.JWTSecret = fc.App.JWTSecret
	out.SessionSecret = fc.App.SessionSecret
	out.RateLimitPerMinute = fc.App.RateLimitPerMinute
	out.AllowedOrigins = fc.App.AllowedOrigins
	out.AdminUsernames = fc.App.AdminUsernames
	out.TLSDomains = fc.App.TLSDomains

	out.DBDriver = fc.Database.Driver
	out.DatabaseURI = fc.Database.DatabaseURI
	out.DBHost = fc.Database.DBHost
	out.DBPort = fc.Database.DBPort
	out.DBUser = fc.Database.DBUser
	out.DBPassword = fc.Database.DBPassword
	out.DBName = fc.Database.DBName

	out.GinMode = fc.Gin.Mode
	out.GinPath = fc.Gin.LogPath

	out.RedisHost = fc.Redis.RedisHost
	out.RedisPort = fc.Redis.RedisPort
	out.RedisDB = fc.Redis.RedisDB
	out.RedisPassword = fc.Redis.RedisPassword

	out.PageCacheSeconds = fc.Cache.PageSeconds

	out.StorageType = fc.Media.StorageType
	out.MediaRoot = fc.Media.Root
	out.MediaURL = fc.Media.URL
	out.MediaMaxWidth = fc.Media.MaxWidth
	out.S3Bucket = fc.S3.Bucket
	out.S3Region = fc.S3.Region
	out.S3Endpoint = fc.S3.Endpoint
	out.S3AccessKey = fc.S3.AccessKey
	out.S3SecretKey = fc.S3.SecretKey
	out.S3PublicURL = fc.S3.PublicURL

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress
	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8000"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		switch c.DBDriver {
		case "postgres":
			c.DBPort = "5432"
		default:
			c.DBPort = "3306"
		}
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "yatube"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.PageCacheSeconds == 0 {
		c.PageCacheSeconds = 20
	}
	if c.StorageType == "" {
		c.StorageType = "disk"
	}
	if c.MediaRoot == "" {
		c.MediaRoot = "media"
	}
	if c.MediaURL == "" {
		c.MediaURL = "/media/"
	}
	if c.MediaMaxWidth == 0 {
		c.MediaMaxWidth = 960
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("SESSION_SECRET", ""); v != "" {
		c.SessionSecret = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	c.AdminUsernames = readListEnv("ADMIN_USERNAMES", c.AdminUsernames)
	c.TLSDomains = readListEnv("TLS_DOMAINS", c.TLSDomains)

	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}

	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("STORAGE_TYPE", ""); v != "" {
		c.StorageType = v
	}
	if v := getEnv("MEDIA_ROOT", ""); v != "" {
		c.MediaRoot = v
	}
	if v := getEnv("MEDIA_URL", ""); v != "" {
		c.MediaURL = v
	}
	if v := getEnv("S3_BUCKET", ""); v != "" {
		c.S3Bucket = v
	}
	if v := getEnv("S3_REGION", ""); v != "" {
		c.S3Region = v
	}
	if v := getEnv("S3_ENDPOINT", ""); v != "" {
		c.S3Endpoint = v
	}
	if v := getEnv("S3_ACCESS_KEY", ""); v != "" {
		c.S3AccessKey = v
	}
	if v := getEnv("S3_SECRET_KEY", ""); v != "" {
		c.S3SecretKey = v
	}
	if v := getEnv("S3_PUBLIC_URL", ""); v != "" {
		c.S3PublicURL = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute},
		{"REDIS_PORT", &c.RedisPort},
		{"REDIS_DB", &c.RedisDB},
		{"PAGE_CACHE_SECONDS", &c.PageCacheSeconds},
		{"MEDIA_MAX_WIDTH", &c.MediaMaxWidth},
		{"LOG_MAX_SIZE_MB", &c.LogMaxSizeMB},
		{"LOG_MAX_BACKUPS", &c.LogMaxBackups},
		{"LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays},
	}
	for _, it := range ints {
		v := getEnv(it.key, "")
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer value %s=%q: %w", it.key, v, err)
		}
		*it.dst = n
	}
	return nil
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// IsAdmin reports whether username is configured as an admin (case-insensitive).
func (c AppConfig) IsAdmin(username string) bool {
	uname := strings.TrimSpace(username)
	if uname == "" {
		return false
	}
	for _, u := range c.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}

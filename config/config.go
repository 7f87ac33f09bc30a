package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	Driver         string // mysql, postgres or memory
	DSN            string
	Host           string
	Port           string
	User           string
	Pass           string
	Name           string
	Params         string
	TLS            string
	TLSVerify      bool
	TLSCAPath      string
	TLSClientCert  string
	TLSClientKey   string
	ConnectRetries int
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxLife    time.Duration
	PingOnConnect  bool
}

type Redis struct {
	Addr string
	Pass string
	DB   int
}

type Session struct {
	Secret       string
	TTL          time.Duration
	TouchAfter   time.Duration
	CookieName   string
	CookieSecure bool
	Audience     string
	Issuer       string
}

type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether document storage was configured.
func (s S3) Enabled() bool {
	return s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

type Admin struct {
	Username string
	Email    string
	Password string
}

type Config struct {
	Env            string
	Port           string
	DB             DB
	Redis          Redis
	Session        Session
	S3             S3
	Admin          Admin
	CORSOrigins    []string
	TrustedProxies []string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	LedgerStrict   bool
	BcryptCost     int
	LoginMaxFails  int
	SeedSampleData bool
}

// IsDevelopment reports whether ENV is development (the default).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// LoadDotenv loads .env if present without overwriting already-set variables.
func LoadDotenv() {
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}
}

// Load reads the process environment into a Config.
func Load() (*Config, error) {
	LoadDotenv()

	cfg := &Config{
		Env:  strings.ToLower(getenv("ENV", "development")),
		Port: getenv("PORT", "8080"),
		DB: DB{
			Driver:         strings.ToLower(getenv("DB_DRIVER", "mysql")),
			DSN:            os.Getenv("DB_DSN"),
			Host:           getenv("DB_HOST", "127.0.0.1"),
			Port:           getenv("DB_PORT", ""),
			User:           getenv("DB_USER", "root"),
			Pass:           getenv("DB_PASS", ""),
			Name:           getenv("DB_NAME", "geniustrading"),
			Params:         getenv("DB_PARAMS", ""),
			TLS:            getenv("DB_TLS", "false"),
			TLSVerify:      getbool("DB_TLS_VERIFY", false),
			TLSCAPath:      getenv("DB_TLS_CA_PATH", ""),
			TLSClientCert:  getenv("DB_TLS_CLIENT_CERT", ""),
			TLSClientKey:   getenv("DB_TLS_CLIENT_KEY", ""),
			ConnectRetries: getint("DB_CONNECT_RETRIES", 5),
			MaxOpenConns:   getint("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getint("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLife:    time.Duration(getint("DB_CONN_MAX_LIFETIME", 3600)) * time.Second,
			PingOnConnect:  getbool("DB_PING_ON_CONNECT", true),
		},
		Redis: Redis{
			Addr: strings.ReplaceAll(getenv("REDIS_ADDR", ""), " ", ""),
			Pass: os.Getenv("REDIS_PASS"),
			DB:   getint("REDIS_DB", 0),
		},
		Session: Session{
			Secret:       os.Getenv("SESSION_SECRET"),
			TTL:          time.Duration(getint("SESSION_TTL_HOURS", 7*24)) * time.Hour,
			TouchAfter:   time.Duration(getint("SESSION_TOUCH_AFTER_HOURS", 24)) * time.Hour,
			CookieName:   getenv("SESSION_COOKIE_NAME", "gt_session"),
			CookieSecure: getbool("SESSION_COOKIE_SECURE", false),
			Audience:     os.Getenv("JWT_AUD"),
			Issuer:       os.Getenv("JWT_ISS"),
		},
		S3: S3{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getenv("S3_REGION", "auto"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Admin: Admin{
			Username: getenv("ADMIN_USERNAME", "admin"),
			Email:    getenv("ADMIN_EMAIL", "admin@geniustrading.com"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		CORSOrigins:    splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		MaxBodyBytes:   int64(getint("MAX_BODY_BYTES", 6<<20)),
		RequestTimeout: time.Duration(getint("REQ_TIMEOUT_SEC", 10)) * time.Second,
		LedgerStrict:   getbool("LEDGER_STRICT", false),
		BcryptCost:     getint("BCRYPT_COST", 10),
		LoginMaxFails:  getint("LOGIN_MAX_FAILURES", 5),
		SeedSampleData: getbool("SEED_SAMPLE_DATA", false),
	}

	if cfg.DB.Port == "" {
		if cfg.DB.Driver == "postgres" {
			cfg.DB.Port = "5432"
		} else {
			cfg.DB.Port = "3306"
		}
	}

	required := []string{"SESSION_SECRET"}
	if cfg.DB.Driver != "memory" && cfg.DB.DSN == "" {
		required = append(required, "DB_HOST", "DB_USER", "DB_NAME")
	}
	for _, key := range required {
		if os.Getenv(key) == "" {
			return nil, fmt.Errorf("required environment variable %s is not set", key)
		}
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getint(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"geniustrading/config"
	applog "geniustrading/logger"

	mysqldriver "github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database with pooling and retry. Duplicate
// key violations surface as gorm.ErrDuplicatedKey.
func Connect(cfg config.DB, env string) (*gorm.DB, error) {
	log := applog.For("database")

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(postgresDSN(cfg))
		log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("using postgres")
	case "mysql", "":
		dsn, err := mysqlDSN(cfg)
		if err != nil {
			return nil, err
		}
		dialector = gormmysql.Open(dsn)
		log.Info().Str("dsn", redact(dsn, cfg.Pass)).Msg("using mysql")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	// GORM logger: verbose in development
	gormLogger := logger.Default.LogMode(logger.Silent)
	if env == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	gcfg := &gorm.Config{Logger: gormLogger, TranslateError: true}

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 1
	}
	var (
		db  *gorm.DB
		err error
	)
	backoff := time.Second
	for attempt := 1; attempt <= retries; attempt++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("database connect failed")
		if attempt < retries {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLife)

	if cfg.PingOnConnect {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
	}
	return db, nil
}

// mysqlDSN builds the go-sql-driver DSN, registering a custom TLS config when
// certificate verification is requested.
func mysqlDSN(cfg config.DB) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	params := cfg.Params
	if params == "" {
		params = "charset=utf8mb4&parseTime=True&loc=UTC"
	}
	if !strings.Contains(params, "tls=") {
		switch {
		case cfg.TLSVerify:
			if err := registerTLS(cfg); err != nil {
				return "", err
			}
			params += "&tls=custom"
		case cfg.TLS == "true" || cfg.TLS == "preferred":
			params += "&tls=" + cfg.TLS
		}
	}
	for _, p := range []string{"timeout", "readTimeout", "writeTimeout"} {
		if !strings.Contains(params, p+"=") {
			params += "&" + p + "=10s"
		}
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", cfg.User, cfg.Pass, cfg.Host, cfg.Port, cfg.Name, params), nil
}

func registerTLS(cfg config.DB) error {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.TLSCAPath != "" {
		caCert, err := os.ReadFile(cfg.TLSCAPath)
		if err != nil {
			return fmt.Errorf("failed reading DB TLS CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return errors.New("failed to append CA certs")
		}
		tlsCfg.RootCAs = pool
	}
	if cfg.TLSClientCert != "" && cfg.TLSClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSClientCert, cfg.TLSClientKey)
		if err != nil {
			return fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return mysqldriver.RegisterTLSConfig("custom", tlsCfg)
}

func postgresDSN(cfg config.DB) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	sslmode := "disable"
	switch {
	case cfg.TLSVerify:
		sslmode = "verify-full"
	case cfg.TLS == "true":
		sslmode = "require"
	case cfg.TLS == "preferred":
		sslmode = "prefer"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Pass, cfg.Name, sslmode)
	if cfg.TLSVerify && cfg.TLSCAPath != "" {
		dsn += " sslrootcert=" + cfg.TLSCAPath
	}
	if cfg.Params != "" {
		dsn += " " + cfg.Params
	}
	return dsn
}

func redact(dsn, pass string) string {
	if pass == "" {
		return dsn
	}
	return strings.Replace(dsn, pass, "******", 1)
}

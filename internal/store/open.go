package store

import (
	"crypto/tls"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gitlab.com/dirk.krummacker/contact-form/internal/config"
)

// Open creates the connection pool described by the configuration. No connection is
// established yet; use Ping for that. In production mode the connection is encrypted but the
// server certificate is not verified, as managed database hosts commonly use self-signed
// certificates.
func Open(cfg config.Config) (*sql.DB, string, error) {
	var sqlDB *sql.DB
	var driverName string
	switch cfg.DBDriver {
	case config.DriverPostgres:
		connConfig, err := postgresConfig(cfg.DatabaseURL, cfg.Production())
		if err != nil {
			return nil, "", err
		}
		sqlDB = stdlib.OpenDB(*connConfig)
		driverName = PostgresDriverName
	case config.DriverMySQL:
		mysqlCfg, err := mysqlConfig(cfg.DatabaseURL, cfg.Production())
		if err != nil {
			return nil, "", err
		}
		connector, err := mysql.NewConnector(mysqlCfg)
		if err != nil {
			return nil, "", fmt.Errorf("create mysql connector: %w", err)
		}
		sqlDB = sql.OpenDB(connector)
		driverName = MySQLDriverName
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return sqlDB, driverName, nil
}

// postgresConfig parses a pgx connection string. Whatever sslmode the string carries, TLS is
// required in production and disabled otherwise.
func postgresConfig(dsn string, production bool) (*pgx.ConnConfig, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres connection string: %w", err)
	}
	connConfig.Fallbacks = nil
	if production {
		connConfig.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // nosemgrep
			ServerName:         connConfig.Host,
		}
	} else {
		connConfig.TLSConfig = nil
	}
	return connConfig, nil
}

// mysqlConfig parses a go-sql-driver DSN and enables time parsing, which the created_at column
// needs. Like postgresConfig it ignores the tls parameter of the DSN: production connections use
// TLS without certificate verification, all others plain TCP.
func mysqlConfig(dsn string, production bool) (*mysql.Config, error) {
	mysqlCfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	mysqlCfg.ParseTime = true
	// ParseDSN already resolved tls=... into TLS, which takes priority over TLSConfig.
	mysqlCfg.TLS = nil
	mysqlCfg.AllowFallbackToPlaintext = false
	if production {
		mysqlCfg.TLSConfig = "skip-verify"
	} else {
		mysqlCfg.TLSConfig = ""
	}
	return mysqlCfg, nil
}

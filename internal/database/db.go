package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/parking-registry/internal/config"
)

// DSN builds the driver connection string.  parseTime maps DATETIME to
// time.Time and loc=UTC keeps session timestamps in UTC.
func DSN(dc config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = dc.User
	mc.Passwd = dc.Pass
	mc.Net = "tcp"
	mc.Addr = dc.Host + ":" + dc.Port
	mc.DBName = dc.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, dc config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(dc))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

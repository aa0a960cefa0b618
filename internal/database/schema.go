package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the three tables.  Statements are idempotent so Migrate
// can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(50) NOT NULL,
		surname     VARCHAR(50) NOT NULL,
		credit_card VARCHAR(50) NULL,
		car_number  VARCHAR(10) NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS parking (
		id                     BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		address                VARCHAR(100) NOT NULL,
		opened                 BOOLEAN NOT NULL,
		count_places           INT NOT NULL,
		count_available_places INT NOT NULL,
		CONSTRAINT chk_parking_available CHECK (count_available_places >= 0 AND count_available_places <= count_places)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS client_parking (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		client_id  BIGINT UNSIGNED NOT NULL,
		parking_id BIGINT UNSIGNED NOT NULL,
		time_in    DATETIME(6) NOT NULL,
		time_out   DATETIME(6) NULL,
		UNIQUE KEY unique_client_parking (client_id, parking_id),
		CONSTRAINT fk_client_parking_client FOREIGN KEY (client_id) REFERENCES clients (id),
		CONSTRAINT fk_client_parking_parking FOREIGN KEY (parking_id) REFERENCES parking (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
)

// schema holds the table definitions.  Tables are created on startup when
// missing so a fresh database is usable immediately.
// The unique index on users.email is what arbitrates concurrent signups for
// the same address: the losing INSERT fails with a duplicate-key error.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password VARCHAR(255) NULL,
		role ENUM('admin','user') NOT NULL DEFAULT 'user',
		provider VARCHAR(255) NOT NULL DEFAULT 'local',
		first_name VARCHAR(80) NULL,
		last_name VARCHAR(175) NULL,
		phone_number VARCHAR(24) NULL,
		email_verified TINYINT(1) NOT NULL DEFAULT 0,
		email_verification_token VARCHAR(255) NULL,
		email_verification_token_expires_at DATETIME(3) NULL,
		password_reset_token VARCHAR(255) NULL,
		password_reset_token_expires_at DATETIME(3) NULL,
		authentication_uid VARCHAR(255) NULL,
		disabled TINYINT(1) NOT NULL DEFAULT 0,
		import_hash VARCHAR(255) NULL,
		created_by_id CHAR(36) NULL,
		updated_by_id CHAR(36) NULL,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		deleted_at DATETIME(3) NULL,
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_import_hash (import_hash)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS files (
		id CHAR(36) NOT NULL PRIMARY KEY,
		belongs_to VARCHAR(255) NOT NULL,
		belongs_to_column VARCHAR(255) NOT NULL,
		belongs_to_id CHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		size_in_bytes BIGINT NULL,
		private_url VARCHAR(1024) NULL,
		public_url VARCHAR(1024) NULL,
		created_by_id CHAR(36) NULL,
		updated_by_id CHAR(36) NULL,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		deleted_at DATETIME(3) NULL,
		KEY idx_files_owner (belongs_to, belongs_to_column, belongs_to_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS products (
		id CHAR(36) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		description TEXT NULL,
		img VARCHAR(1024) NULL,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Sync creates any missing tables.  Existing tables are left untouched.
func Sync(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

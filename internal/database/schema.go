package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// schema lists the tables in dependency order.  Every statement is
// idempotent so Apply can run on each start.
var schema = []struct {
	table string
	ddl   string
}{
	{"admins", `CREATE TABLE IF NOT EXISTS admins (
  id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  email         VARCHAR(191) NOT NULL,
  password_hash VARCHAR(255) NOT NULL,
  name          VARCHAR(191) NOT NULL,
  created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE KEY uq_admins_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"users", `CREATE TABLE IF NOT EXISTS users (
  id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  email         VARCHAR(191) NOT NULL,
  password_hash VARCHAR(255) NOT NULL,
  name          VARCHAR(191) NOT NULL,
  phone         VARCHAR(32)  NOT NULL,
  picture       VARCHAR(512) NULL,
  created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"boarding_houses", `CREATE TABLE IF NOT EXISTS boarding_houses (
  id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  name          VARCHAR(191) NOT NULL,
  owner         VARCHAR(191) NOT NULL,
  email         VARCHAR(191) NOT NULL,
  phone         VARCHAR(32)  NOT NULL,
  description   TEXT NOT NULL,
  district      VARCHAR(191) NOT NULL,
  subdistrict   VARCHAR(191) NOT NULL,
  location      VARCHAR(512) NOT NULL,
  max_capacity  INT NOT NULL,
  price         BIGINT NOT NULL,
  is_pending    BOOLEAN NOT NULL DEFAULT TRUE,
  is_confirmed  BOOLEAN NOT NULL DEFAULT FALSE,
  is_active     BOOLEAN NOT NULL DEFAULT FALSE,
  password_hash VARCHAR(255) NULL,
  owner_picture VARCHAR(512) NULL,
  created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  UNIQUE KEY uq_boarding_houses_email (email),
  CONSTRAINT chk_boarding_houses_capacity CHECK (max_capacity > 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"pictures", `CREATE TABLE IF NOT EXISTS pictures (
  id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  boarding_house_id BIGINT UNSIGNED NOT NULL,
  picture           VARCHAR(512) NOT NULL,
  created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  KEY idx_pictures_listing (boarding_house_id),
  CONSTRAINT fk_pictures_listing FOREIGN KEY (boarding_house_id)
    REFERENCES boarding_houses (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"panoramas", `CREATE TABLE IF NOT EXISTS panoramas (
  id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  boarding_house_id BIGINT UNSIGNED NOT NULL,
  picture           VARCHAR(512) NOT NULL,
  created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  KEY idx_panoramas_listing (boarding_house_id),
  CONSTRAINT fk_panoramas_listing FOREIGN KEY (boarding_house_id)
    REFERENCES boarding_houses (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"bookings", `CREATE TABLE IF NOT EXISTS bookings (
  id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  user_id           BIGINT UNSIGNED NOT NULL,
  boarding_house_id BIGINT UNSIGNED NOT NULL,
  is_active         BOOLEAN NOT NULL DEFAULT TRUE,
  booked_date       DATETIME NOT NULL,
  active_slot       TINYINT AS (IF(is_active, 1, NULL)) STORED,
  UNIQUE KEY uq_bookings_active (user_id, boarding_house_id, active_slot),
  KEY idx_bookings_listing (boarding_house_id, is_active),
  CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
  CONSTRAINT fk_bookings_listing FOREIGN KEY (boarding_house_id) REFERENCES boarding_houses (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"reviews", `CREATE TABLE IF NOT EXISTS reviews (
  id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  user_id           BIGINT UNSIGNED NOT NULL,
  boarding_house_id BIGINT UNSIGNED NOT NULL,
  rating            TINYINT NOT NULL,
  comment           TEXT NOT NULL,
  created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE KEY uq_reviews_pair (user_id, boarding_house_id),
  KEY idx_reviews_listing (boarding_house_id),
  CONSTRAINT chk_reviews_rating CHECK (rating BETWEEN 1 AND 5),
  CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users (id),
  CONSTRAINT fk_reviews_listing FOREIGN KEY (boarding_house_id) REFERENCES boarding_houses (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"bookmarks", `CREATE TABLE IF NOT EXISTS bookmarks (
  id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  user_id           BIGINT UNSIGNED NOT NULL,
  boarding_house_id BIGINT UNSIGNED NOT NULL,
  bookmark_date     DATETIME NOT NULL,
  UNIQUE KEY uq_bookmarks_pair (user_id, boarding_house_id),
  CONSTRAINT fk_bookmarks_user FOREIGN KEY (user_id) REFERENCES users (id),
  CONSTRAINT fk_bookmarks_listing FOREIGN KEY (boarding_house_id) REFERENCES boarding_houses (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// Tables returns the managed table names in creation order.
func Tables() []string {
	out := make([]string, len(schema))
	for i, s := range schema {
		out[i] = s.table
	}
	return out
}

// Apply creates any missing tables.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, s := range schema {
		if _, err := db.ExecContext(ctx, s.ddl); err != nil {
			return errors.Wrapf(err, "create table %s", s.table)
		}
	}
	return nil
}

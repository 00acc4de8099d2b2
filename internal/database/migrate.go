package database

// migrate.go creates the schema and seeds the default content catalog.
// Statements are idempotent (CREATE TABLE IF NOT EXISTS / INSERT
// IGNORE) so Migrate can run unconditionally at every startup.

import (
	"context"
	"database/sql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NULL,
		phone VARCHAR(32) NULL,
		password_hash VARCHAR(255) NOT NULL,
		preferred_language VARCHAR(8) NOT NULL DEFAULT 'en',
		is_admin TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_phone (phone)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS content_types (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(64) NOT NULL,
		display_name VARCHAR(255) NOT NULL,
		description TEXT NULL,
		portion_types TEXT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_by BIGINT UNSIGNED NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_content_types_name (name),
		CONSTRAINT fk_content_types_creator FOREIGN KEY (created_by) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS recitations (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		creator_id BIGINT UNSIGNED NOT NULL,
		content_type VARCHAR(64) NOT NULL,
		portion_type VARCHAR(64) NOT NULL,
		total_portions INT NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'active',
		language VARCHAR(8) NOT NULL DEFAULT 'en',
		deadline TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY ix_recitations_status_created (status, created_at),
		CONSTRAINT fk_recitations_creator FOREIGN KEY (creator_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS participants (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		recitation_id BIGINT UNSIGNED NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_participants_pair (recitation_id, user_id),
		CONSTRAINT fk_participants_recitation FOREIGN KEY (recitation_id) REFERENCES recitations(id),
		CONSTRAINT fk_participants_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS portions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		recitation_id BIGINT UNSIGNED NOT NULL,
		user_id BIGINT UNSIGNED NULL,
		portion_number INT NOT NULL,
		progress_percentage INT NOT NULL DEFAULT 0,
		is_completed TINYINT(1) NOT NULL DEFAULT 0,
		assigned_at TIMESTAMP NULL,
		completed_at TIMESTAMP NULL,
		last_progress_update TIMESTAMP NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_portions_pair (recitation_id, portion_number),
		KEY ix_portions_user (user_id),
		CONSTRAINT fk_portions_recitation FOREIGN KEY (recitation_id) REFERENCES recitations(id),
		CONSTRAINT fk_portions_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS progress_notes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		portion_id BIGINT UNSIGNED NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		progress_percentage INT NOT NULL,
		notes TEXT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY ix_progress_notes_portion (portion_id),
		CONSTRAINT fk_progress_notes_portion FOREIGN KEY (portion_id) REFERENCES portions(id),
		CONSTRAINT fk_progress_notes_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// seedContentTypes is the default catalog.  Rows already present are
// left untouched (INSERT IGNORE keyed on the unique name), so admin
// edits to seeded entries survive restarts.
var seedContentTypes = [][4]string{
	{"quran", "Holy Quran", "The Holy Quran", `{"juz":30,"hezb":60,"quarter":240,"surah":114,"page":604}`},
	{"sahifa_sajjadiya", "Al-Sahifa al-Sajjadiyya", "Psalms of Islam", `{"dua":54}`},
	{"mafatih", "Mafatih al-Jinan", "Keys to the Gardens", `{}`},
	{"nahj_balagha", "Nahjul Balagha", "Peak of Eloquence", `{"sermon":241,"letter":79,"saying":480}`},
	{"al_kafi", "Al-Kafi", "The Sufficient", `{"volume":8}`},
	{"man_la_yahduruhu", "Man La Yahduruhu al-Faqih", "For One Not in the Presence of a Jurist", `{"volume":4}`},
	{"ziyarat_ashura", "Ziyarat Ashura", "Ziyarat of Imam Hussain (AS)", `{"day":40}`},
	{"custom", "Custom", "Custom content type", `{}`},
}

// Migrate creates all tables and seeds the default content types.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, ct := range seedContentTypes {
		_, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO content_types (name, display_name, description, portion_types) VALUES (?,?,?,?)`,
			ct[0], ct[1], ct[2], ct[3])
		if err != nil {
			return err
		}
	}
	return nil
}

// PromoteAdmin flips the is_admin flag for the user registered under
// the given email.  It is a no-op when the email is empty or no such
// user exists yet; there is no admin-promotion endpoint, so this is
// how the first admin comes to be.
func PromoteAdmin(ctx context.Context, db *sql.DB, email string) error {
	if email == "" {
		return nil
	}
	_, err := db.ExecContext(ctx, `UPDATE users SET is_admin = 1 WHERE email = ?`, email)
	return err
}

package model

import "time"

// User represents an application user record as stored in the
// `users` table.  A user registers with either an email address or a
// phone number; whichever is absent stays NULL so the store can keep
// a uniqueness constraint on each independently.  The json tags are
// omitted because these structs are used by the repository layer;
// handlers define their own response types.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Name              – display name.
//  Email             – unique email address (nil when registered by phone).
//  Phone             – unique phone number in +<digits> form (nil when registered by email).
//  PasswordHash      – bcrypt hashed password.
//  PreferredLanguage – UI language code such as "en", "ar", "fa".
//  IsAdmin           – whether the user may manage the content catalog.
//  CreatedAt         – timestamp of creation.
type User struct {
	ID                uint64    // users.id
	Name              string    // users.name
	Email             *string   // users.email (nullable)
	Phone             *string   // users.phone (nullable)
	PasswordHash      string    // users.password_hash
	PreferredLanguage string    // users.preferred_language
	IsAdmin           bool      // users.is_admin
	CreatedAt         time.Time // users.created_at
}

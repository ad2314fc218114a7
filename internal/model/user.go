package model

import "time"

// User represents a mobile app account as stored in the `users` table.
// PasswordHash is never serialised; handlers return the struct directly
// so the json tags define the public shape of a profile.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address (unique across users, admins and boarding houses).
//  PasswordHash – bcrypt hashed password.
//  Name, Phone  – profile fields.
//  Picture      – URL of the profile picture (nullable).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"userId"`    // users.id
	Email        string    `json:"email"`     // users.email
	PasswordHash string    `json:"-"`         // users.password_hash
	Name         string    `json:"name"`      // users.name
	Phone        string    `json:"phone"`     // users.phone
	Picture      *string   `json:"picture"`   // users.picture (nullable)
	CreatedAt    time.Time `json:"createdAt"` // users.created_at
	UpdatedAt    time.Time `json:"updatedAt"` // users.updated_at
}

// Admin represents a platform operator in the `admins` table.  Admins are
// provisioned out of band (see cmd/create-admin); there is no registration
// endpoint for them.
type Admin struct {
	ID           uint64    `json:"adminId"`   // admins.id
	Email        string    `json:"email"`     // admins.email
	PasswordHash string    `json:"-"`         // admins.password_hash
	Name         string    `json:"name"`      // admins.name
	CreatedAt    time.Time `json:"createdAt"` // admins.created_at
}

// UserSummary is the subset of a user exposed to boarding house owners when
// they list transactions on their listing.
type UserSummary struct {
	ID      uint64  `json:"userId"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Picture *string `json:"picture"`
}

// EmailOwner identifies the account that holds an email address.  Kind is
// one of the token roles (USER, ADMIN, BOARDING_HOUSE).
type EmailOwner struct {
	Kind string
	ID   uint64
}

package model

import (
    "strings"
    "time"
)

// Role values stored in users.role.
const (
    RoleAdmin = "admin"
    RoleUser  = "user"
)

// Provider values stored in users.provider.  A user created through a social
// sign-in carries the provider name; local accounts carry ProviderLocal.
const (
    ProviderLocal     = "local"
    ProviderGoogle    = "google"
    ProviderMicrosoft = "microsoft"
)

// KnownProvider reports whether p names a supported identity provider.
func KnownProvider(p string) bool {
    switch p {
    case ProviderLocal, ProviderGoogle, ProviderMicrosoft:
        return true
    }
    return false
}

// User represents an application user record as stored in the `users` table.
// PasswordHash is empty for accounts that have never set a local password.
// AuthenticationUID links the record to an external identity and defaults to
// the user's own id once a local password is established.  DeletedAt is the
// soft-delete tombstone: removed users keep their row.
//
// Fields:
//  ID                    – primary key (uuid).
//  Email                 – unique email address, stored lowercased.
//  PasswordHash          – bcrypt hashed password (empty when unset).
//  Role                  – admin | user.
//  Provider              – local | google | microsoft.
//  EmailVerified         – whether the address was confirmed.
//  Disabled              – a disabled user may never authenticate.
//  EmailVerificationToken / EmailVerificationExpiry – pending verification token pair.
//  PasswordResetToken / PasswordResetExpiry         – pending reset token pair.
//  AuthenticationUID     – external identity linkage.
//  CreatedByID/UpdatedByID – audit references to other users.
type User struct {
    ID                      string     // users.id
    Email                   string     // users.email
    PasswordHash            string     // users.password
    Role                    string     // users.role
    Provider                string     // users.provider
    FirstName               string     // users.first_name
    LastName                string     // users.last_name
    PhoneNumber             string     // users.phone_number
    EmailVerified           bool       // users.email_verified
    EmailVerificationToken  string     // users.email_verification_token
    EmailVerificationExpiry *time.Time // users.email_verification_token_expires_at
    PasswordResetToken      string     // users.password_reset_token
    PasswordResetExpiry     *time.Time // users.password_reset_token_expires_at
    AuthenticationUID       string     // users.authentication_uid
    Disabled                bool       // users.disabled
    ImportHash              string     // users.import_hash
    CreatedByID             string     // users.created_by_id
    UpdatedByID             string     // users.updated_by_id
    CreatedAt               time.Time  // users.created_at
    UpdatedAt               time.Time  // users.updated_at
    DeletedAt               *time.Time // users.deleted_at (soft delete)
}

// Normalize trims string fields and lowercases the email.  The original
// template did this in storage-layer hooks; here every service calls it
// explicitly before a write so nothing depends on hidden lifecycle magic.
func (u *User) Normalize() {
    u.Email = strings.ToLower(strings.TrimSpace(u.Email))
    u.FirstName = strings.TrimSpace(u.FirstName)
    u.LastName = strings.TrimSpace(u.LastName)
    u.PhoneNumber = strings.TrimSpace(u.PhoneNumber)
    if u.Role == "" {
        u.Role = RoleUser
    }
    if u.Provider == "" {
        u.Provider = ProviderLocal
    }
}

package model

import "time"

// File models an entry in the `files` table.  Files attach to arbitrary
// owner rows through the (BelongsTo, BelongsToColumn, BelongsToID) triple;
// user avatars are files with BelongsTo="users" and BelongsToColumn="avatars".
//
// Fields:
//  ID          – primary key (uuid).
//  BelongsTo   – owning table name.
//  BelongsToColumn – logical attachment slot on the owner.
//  BelongsToID – owning row id.
//  Name        – original file name.
//  SizeInBytes – upload size.
//  PrivateURL  – path under the upload directory.
//  PublicURL   – externally reachable URL.
type File struct {
    ID              string     `json:"id"`             // files.id
    BelongsTo       string     `json:"-"`              // files.belongs_to
    BelongsToColumn string     `json:"-"`              // files.belongs_to_column
    BelongsToID     string     `json:"-"`              // files.belongs_to_id
    Name            string     `json:"name"`           // files.name
    SizeInBytes     int64      `json:"sizeInBytes"`    // files.size_in_bytes
    PrivateURL      string     `json:"privateUrl"`     // files.private_url
    PublicURL       string     `json:"publicUrl"`      // files.public_url
    CreatedByID     string     `json:"-"`              // files.created_by_id
    UpdatedByID     string     `json:"-"`              // files.updated_by_id
    CreatedAt       time.Time  `json:"createdAt"`      // files.created_at
    UpdatedAt       time.Time  `json:"updatedAt"`      // files.updated_at
    DeletedAt       *time.Time `json:"-"`              // files.deleted_at (soft delete)
}

// Attachment slot used for user avatars.
const (
    FileBelongsToUsers = "users"
    FileColumnAvatars  = "avatars"
)

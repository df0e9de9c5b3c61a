package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/flatlogic/usermgmt-backend/internal/model"
)

// FileRepo persists polymorphic file attachments (user avatars today).
type FileRepo struct{ DB *sql.DB }

func NewFileRepo(db *sql.DB) *FileRepo { return &FileRepo{DB: db} }

// ListForOwner returns the live attachments for one owner slot.
func (r *FileRepo) ListForOwner(ctx context.Context, belongsTo, column, ownerID string) ([]model.File, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, belongs_to, belongs_to_column, belongs_to_id, name, size_in_bytes,
		        private_url, public_url, created_at, updated_at
		 FROM files
		 WHERE belongs_to=? AND belongs_to_column=? AND belongs_to_id=? AND deleted_at IS NULL
		 ORDER BY created_at ASC`,
		belongsTo, column, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.File{}
	for rows.Next() {
		var (
			f          model.File
			size       sql.NullInt64
			privateURL sql.NullString
			publicURL  sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.BelongsTo, &f.BelongsToColumn, &f.BelongsToID,
			&f.Name, &size, &privateURL, &publicURL, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.SizeInBytes = size.Int64
		f.PrivateURL = privateURL.String
		f.PublicURL = publicURL.String
		out = append(out, f)
	}
	return out, rows.Err()
}

// ReplaceForOwnerTx swaps an owner slot's attachments for the given set inside
// a caller-owned transaction.  Kept files (those with a known id) survive;
// everything else in the slot is soft-deleted, and new files are inserted.
// Runs in the same transaction as the owning user write so a failure after
// partial writes rolls everything back together.
func (r *FileRepo) ReplaceForOwnerTx(ctx context.Context, tx *sql.Tx, belongsTo, column, ownerID string, files []model.File, actorID string) error {
	keep := []any{belongsTo, column, ownerID}
	placeholders := ""
	for _, f := range files {
		if f.ID != "" {
			if placeholders != "" {
				placeholders += ","
			}
			placeholders += "?"
			keep = append(keep, f.ID)
		}
	}
	query := `UPDATE files SET deleted_at=NOW(3)
		 WHERE belongs_to=? AND belongs_to_column=? AND belongs_to_id=? AND deleted_at IS NULL`
	if placeholders != "" {
		query += " AND id NOT IN (" + placeholders + ")"
	}
	if _, err := tx.ExecContext(ctx, query, keep...); err != nil {
		return err
	}

	for _, f := range files {
		if f.ID != "" {
			continue // already stored
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (id, belongs_to, belongs_to_column, belongs_to_id, name,
			 size_in_bytes, private_url, public_url, created_by_id, updated_by_id)
			 VALUES (?,?,?,?,?,?,?,?,?,?)`,
			uuid.NewString(), belongsTo, column, ownerID, f.Name,
			f.SizeInBytes, nullable(f.PrivateURL), nullable(f.PublicURL),
			nullable(actorID), nullable(actorID)); err != nil {
			return err
		}
	}
	return nil
}

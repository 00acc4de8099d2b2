package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/collective-recitation/internal/model"
)

// ErrTotalRequired is returned by ResolvePortionCount when the
// combination needs an explicit total that the caller did not supply.
// Handlers translate it into a 400 with the wrapped message.
var ErrTotalRequired = errors.New("total_portions required for custom content")

// ErrUnsupportedCombination is returned when no active catalog entry
// covers the requested (content type, portion type) pair and no
// explicit total was given.
var ErrUnsupportedCombination = errors.New("unsupported combination")

// ContentTypeRepo provides data access to the content_types catalog
// and portion-count resolution for recitation creation.  Handlers
// receive it as an explicit dependency; the catalog is never global
// state.
type ContentTypeRepo struct{ DB *sql.DB }

func NewContentTypeRepo(db *sql.DB) *ContentTypeRepo { return &ContentTypeRepo{DB: db} }

// portionCountFrom parses a portion-type mapping stored as a JSON
// object ({"juz":30,...}) and looks up one label.  Malformed JSON is
// treated the same as an absent key: no match.
func portionCountFrom(mappingJSON, portionType string) (int, bool) {
	if strings.TrimSpace(mappingJSON) == "" {
		return 0, false
	}
	var mapping map[string]int
	if err := json.Unmarshal([]byte(mappingJSON), &mapping); err != nil {
		return 0, false
	}
	n, ok := mapping[portionType]
	return n, ok
}

// ResolvePortionCount determines how many portions a recitation of
// the given content and portion type has.  An explicit total always
// wins, and the "custom" content type demands one.  Otherwise the
// active catalog entry for the content type is consulted and its
// mapping must carry the portion type.  The resolution runs exactly
// once, at recitation creation; the result is persisted and later
// catalog edits never resize existing recitations.
func (r *ContentTypeRepo) ResolvePortionCount(ctx context.Context, contentType, portionType string, explicitTotal *int) (int, error) {
	if contentType == "custom" || explicitTotal != nil {
		if explicitTotal == nil {
			return 0, ErrTotalRequired
		}
		return *explicitTotal, nil
	}

	var mapping sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT portion_types FROM content_types WHERE name=? AND is_active=1 LIMIT 1",
		contentType).Scan(&mapping)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	if err == nil && mapping.Valid {
		if n, ok := portionCountFrom(mapping.String, portionType); ok {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s/%s, please provide total_portions",
		ErrUnsupportedCombination, contentType, portionType)
}

// Create inserts a new catalog entry.  The portion-type mapping is
// stored as JSON text.  A duplicate name yields ErrNameExists.
func (r *ContentTypeRepo) Create(ctx context.Context, name, displayName string, description *string, portionTypes map[string]int, createdBy uint64) (uint64, error) {
	mapping, err := json.Marshal(portionTypes)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO content_types (name, display_name, description, portion_types, created_by) VALUES (?,?,?,?,?)",
		name, displayName, description, string(mapping), createdBy)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns catalog entries, active-only unless includeInactive.
func (r *ContentTypeRepo) List(ctx context.Context, includeInactive bool) ([]model.ContentType, error) {
	q := "SELECT id,name,display_name,description,portion_types,is_active,created_by,created_at FROM content_types"
	if !includeInactive {
		q += " WHERE is_active=1"
	}
	q += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ContentType, 0)
	for rows.Next() {
		var ct model.ContentType
		var mapping sql.NullString
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.DisplayName, &ct.Description,
			&mapping, &ct.IsActive, &ct.CreatedBy, &ct.CreatedAt); err != nil {
			return nil, err
		}
		if mapping.Valid {
			ct.PortionTypes = mapping.String
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// ContentTypeUpdate carries the optional fields of a catalog update.
// Nil fields are left untouched; an update with nothing set is
// rejected by Update.
type ContentTypeUpdate struct {
	DisplayName  *string
	Description  *string
	PortionTypes map[string]int
	IsActive     *bool
}

// Empty reports whether the update carries no field at all.
func (u ContentTypeUpdate) Empty() bool {
	return u.DisplayName == nil && u.Description == nil && u.PortionTypes == nil && u.IsActive == nil
}

// Update applies a partial update to a catalog entry.  Unknown id
// yields ErrNotFound.
func (r *ContentTypeRepo) Update(ctx context.Context, id uint64, upd ContentTypeUpdate) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if upd.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *upd.DisplayName)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.PortionTypes != nil {
		mapping, err := json.Marshal(upd.PortionTypes)
		if err != nil {
			return err
		}
		sets = append(sets, "portion_types = ?")
		args = append(args, string(mapping))
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *upd.IsActive)
	}
	if len(sets) == 0 {
		return errors.New("no valid fields to update")
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE content_types SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleActive flips the is_active flag and returns the new state.
// Unknown id yields ErrNotFound.
func (r *ContentTypeRepo) ToggleActive(ctx context.Context, id uint64) (bool, error) {
	var active bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT is_active FROM content_types WHERE id=? LIMIT 1", id).Scan(&active)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	newState := !active
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE content_types SET is_active=? WHERE id=?", newState, id); err != nil {
		return false, err
	}
	return newState, nil
}

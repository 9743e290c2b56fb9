package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

// Store implements ports.TemplateStore, ports.SnippetStore and ports.ItemSource.
type Store struct {
	db *sql.DB
}

// New opens (creating when needed) the database at path and migrates it.
func New(path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an already migrated database.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const templateColumns = `id, kind, name, description, model_type, template, filters,
	filename_pattern, enabled, revision, page_size, landscape, width, height`

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (domain.Template, error) {
	var t domain.Template
	var kind, model string
	err := row.Scan(&t.ID, &kind, &t.Name, &t.Description, &model, &t.Template, &t.Filters,
		&t.FilenamePattern, &t.Enabled, &t.Revision, &t.PageSize, &t.Landscape, &t.Width, &t.Height)
	t.Kind = domain.TemplateKind(kind)
	t.ModelType = domain.ModelType(model)
	return t, err
}

// List returns templates matching q, ordered by ID.
func (s *Store) List(ctx context.Context, q ports.TemplateQuery) ([]domain.Template, error) {
	var (
		where []string
		args  []any
	)
	if q.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(q.Kind))
	}
	if q.ModelType != "" {
		where = append(where, "model_type = ?")
		args = append(args, string(q.ModelType))
	}
	if q.Enabled != nil {
		where = append(where, "enabled = ?")
		args = append(args, *q.Enabled)
	}
	if q.Search != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		like := "%" + q.Search + "%"
		args = append(args, like, like)
	}

	query := "SELECT " + templateColumns + " FROM templates"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get retrieves a template by kind and ID.
func (s *Store) Get(ctx context.Context, kind domain.TemplateKind, id int64) (*domain.Template, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM templates WHERE kind = ? AND id = ?", string(kind), id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &t, nil
}

// Save inserts or updates a template, incrementing its revision.
func (s *Store) Save(ctx context.Context, t *domain.Template) error {
	return WithTx(s.db, func(tx *sql.Tx) error {
		if t.ID == 0 {
			res, err := tx.ExecContext(ctx, `
			INSERT INTO templates(kind, name, description, model_type, template, filters,
				filename_pattern, enabled, revision, page_size, landscape, width, height)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`,
				string(t.Kind), t.Name, t.Description, string(t.ModelType), t.Template, t.Filters,
				t.FilenamePattern, t.Enabled, t.PageSize, t.Landscape, t.Width, t.Height)
			if err != nil {
				return fmt.Errorf("failed to insert template: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			t.ID = id
			t.Revision = 1
			return nil
		}

		var rev int
		err := tx.QueryRowContext(ctx, "SELECT revision FROM templates WHERE kind = ? AND id = ?", string(t.Kind), t.ID).Scan(&rev)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrTemplateNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
		UPDATE templates SET name=?, description=?, model_type=?, template=?, filters=?,
			filename_pattern=?, enabled=?, revision=?, page_size=?, landscape=?, width=?, height=?
		WHERE kind = ? AND id = ?`,
			t.Name, t.Description, string(t.ModelType), t.Template, t.Filters,
			t.FilenamePattern, t.Enabled, rev+1, t.PageSize, t.Landscape, t.Width, t.Height,
			string(t.Kind), t.ID)
		if err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}
		t.Revision = rev + 1
		return nil
	})
}

// Delete removes a template.
func (s *Store) Delete(ctx context.Context, kind domain.TemplateKind, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE kind = ? AND id = ?", string(kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

// Snippets returns all snippets ordered by name.
func (s *Store) Snippets(ctx context.Context) ([]domain.Snippet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, content FROM snippets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Snippet
	for rows.Next() {
		var sn domain.Snippet
		if err := rows.Scan(&sn.ID, &sn.Name, &sn.Description, &sn.Content); err != nil {
			return nil, err
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

// SaveSnippet inserts or replaces a snippet.
func (s *Store) SaveSnippet(ctx context.Context, sn *domain.Snippet) error {
	var err error
	if sn.ID == 0 {
		var res sql.Result
		res, err = s.db.ExecContext(ctx, `INSERT INTO snippets(name, description, content) VALUES (?, ?, ?)`,
			sn.Name, sn.Description, sn.Content)
		if err == nil {
			sn.ID, err = res.LastInsertId()
		}
	} else {
		_, err = s.db.ExecContext(ctx, `
		INSERT INTO snippets(id, name, description, content) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 name=excluded.name,
		 description=excluded.description,
		 content=excluded.content`, sn.ID, sn.Name, sn.Description, sn.Content)
	}

	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return domain.FieldError("snippet", "Snippet with this name already exists.")
	}
	return err
}

// DeleteSnippet removes a snippet.
func (s *Store) DeleteSnippet(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snippets WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSnippetNotFound
	}
	return nil
}

// Items returns the existing items among ids, in ID order.
func (s *Store) Items(ctx context.Context, modelType domain.ModelType, ids []int64) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(modelType))
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, fields FROM items WHERE model_type = ? AND id IN ("+placeholders+") ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		it := domain.Item{ModelType: modelType}
		var raw string
		if err := rows.Scan(&it.ID, &it.Name, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &it.Fields); err != nil {
			return nil, fmt.Errorf("item %d: invalid fields: %w", it.ID, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpsertItem stores an item, replacing any previous version.
func (s *Store) UpsertItem(ctx context.Context, it domain.Item) error {
	fields, err := json.Marshal(it.Fields)
	if err != nil {
		return err
	}
	if it.Fields == nil {
		fields = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO items(model_type, id, name, fields) VALUES (?, ?, ?, ?)
	ON CONFLICT(model_type, id) DO UPDATE SET
	 name=excluded.name,
	 fields=excluded.fields`, string(it.ModelType), it.ID, it.Name, string(fields))
	return err
}

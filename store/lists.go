// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/creachadair/mds/value"
	"github.com/maristie/ass-danmaku"
)

// A List is a named list of comments parsed from one response.
type List struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	URL      string            `json:"url,omitempty" yaml:"url,omitempty"`
	Format   string            `json:"format" yaml:"format"`
	SourceID string            `json:"sourceId,omitempty" yaml:"sourceId,omitempty"` // correlation ID of the result
	Created  time.Time         `json:"created" yaml:"created"`
	Comments []danmaku.Comment `json:"comments" yaml:"comments"`
}

// A Summary describes a stored list without its comments.
type Summary struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Format   string    `json:"format" yaml:"format"`
	Created  time.Time `json:"created" yaml:"created"`
	Comments int       `json:"comments" yaml:"comments"`
}

// Put stores lst, replacing any existing list with the same ID. If
// lst.Created is zero, the current time is recorded.
func (s *Store) Put(ctx context.Context, lst *List) error {
	if lst.ID == "" {
		return errors.New("list ID is empty")
	}
	created := lst.Created
	if created.IsZero() {
		created = time.Now()
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, lst.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lists (id, name, url, format, source_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			lst.ID, lst.Name, lst.URL, lst.Format, lst.SourceID, created.UnixMilli(),
		); err != nil {
			return err
		}
		ins, err := tx.PrepareContext(ctx,
			`INSERT INTO comments (list_id, seq, text, time, mode, size, color, bottom, source_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer ins.Close()
		for i, c := range lst.Comments {
			if _, err := ins.ExecContext(ctx, lst.ID, i, c.Text, c.Time, c.Mode.String(), c.Size,
				int64(c.Color.Uint32()), value.Cond(c.Bottom, 1, 0), c.SourceID); err != nil {
				return fmt.Errorf("comment %d: %w", i, err)
			}
		}
		return nil
	})
}

// Get returns the list with the given ID, or [ErrNotFound].
func (s *Store) Get(ctx context.Context, id string) (*List, error) {
	lst := &List{ID: id, Comments: []danmaku.Comment{}}
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT name, url, format, source_id, created_at FROM lists WHERE id = ?`, id,
	).Scan(&lst.Name, &lst.URL, &lst.Format, &lst.SourceID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	} else if err != nil {
		return nil, err
	}
	lst.Created = time.UnixMilli(created)

	rows, err := s.db.QueryContext(ctx,
		`SELECT text, time, mode, size, color, bottom, source_id FROM comments
		 WHERE list_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c danmaku.Comment
		var mode string
		var color int64
		if err := rows.Scan(&c.Text, &c.Time, &mode, &c.Size, &color, &c.Bottom, &c.SourceID); err != nil {
			return nil, err
		}
		if err := c.Mode.UnmarshalText([]byte(mode)); err != nil {
			return nil, fmt.Errorf("list %q: %w", id, err)
		}
		c.Color = danmaku.ColorOf(uint32(color))
		lst.Comments = append(lst.Comments, c)
	}
	return lst, rows.Err()
}

// Lists returns summaries of all the stored lists, ordered by ID.
func (s *Store) Lists(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.name, l.format, l.created_at, COUNT(c.seq)
		FROM lists l LEFT JOIN comments c ON c.list_id = l.id
		GROUP BY l.id ORDER BY l.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var sum Summary
		var created int64
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Format, &created, &sum.Comments); err != nil {
			return nil, err
		}
		sum.Created = time.UnixMilli(created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the list with the given ID and its comments. It reports
// [ErrNotFound] if there is no such list.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

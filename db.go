package cpcgfx

import (
	"database/sql"
	"errors"
	"fmt"
	"image/color"

	"github.com/bodgit/cpcgfx/palette"
	_ "github.com/mattn/go-sqlite3" // register sqlite3 driver
)

// Cache stores packed images keyed by the SHA-1 of the source file and the
// conversion settings.
type Cache struct {
	db *sql.DB
}

// NewCache opens, creating if necessary, the cache database in file.
func NewCache(file string) (*Cache, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sprite (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, settings TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, data BLOB NOT NULL, inexact INTEGER NOT NULL, snapped INTEGER NOT NULL, UNIQUE(sha1, settings))"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS ink (sprite_id INTEGER NOT NULL, pen INTEGER NOT NULL, ink INTEGER NOT NULL, UNIQUE(sprite_id, pen), FOREIGN KEY(sprite_id) REFERENCES sprite(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Len returns the number of cached images.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM sprite").Scan(&n)
	return n, err
}

// Purge removes every cached image.
func (c *Cache) Purge() error {
	if _, err := c.db.Exec("DELETE FROM ink"); err != nil {
		return err
	}
	_, err := c.db.Exec("DELETE FROM sprite")
	return err
}

func (c *Cache) find(sha, settings string) (*sprite, error) {
	var id, rgb int64
	s := &sprite{inks: palette.Inks{}}
	switch err := c.db.QueryRow("SELECT id, width, height, data, inexact, snapped FROM sprite WHERE sha1 = ? AND settings = ?", sha, settings).Scan(&id, &s.width, &s.height, &s.data, &s.inexact, &rgb); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
	default:
		return nil, err
	}

	if len(s.data) < 2 {
		return nil, errors.New("cache: corrupt entry")
	}
	if s.inexact > 0 {
		s.snapped = color.NRGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xff}
	}

	rows, err := c.db.Query("SELECT pen, ink FROM ink WHERE sprite_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pen, ink int
		if err := rows.Scan(&pen, &ink); err != nil {
			return nil, err
		}
		s.inks[pen] = ink
	}

	return s, rows.Err()
}

func (c *Cache) store(sha, settings string, s *sprite) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}

	rgb := int64(s.snapped.R)<<16 | int64(s.snapped.G)<<8 | int64(s.snapped.B)
	result, err := tx.Exec("INSERT INTO sprite (sha1, settings, width, height, data, inexact, snapped) VALUES (?, ?, ?, ?, ?, ?, ?)", sha, settings, s.width, s.height, s.data, s.inexact, rgb)
	if err != nil {
		tx.Rollback()
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}

	for pen, ink := range s.inks {
		if _, err := tx.Exec("INSERT INTO ink (sprite_id, pen, ink) VALUES (?, ?, ?)", id, pen, ink); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

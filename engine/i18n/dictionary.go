// Package i18n implements the translation dictionary: a mapping
// locale -> {key -> string}, consulted by 't(KEY)' tags. The engine core
// only depends on the Dictionary interface; this package supplies two
// concrete implementations, an in-memory one for tests and embedded use,
// and a SQLite-backed one for persisted dictionaries.
package i18n

import (
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"docweave/common"
)

// Dictionary resolves a translation key against a locale, falling back
// to a default locale; a miss in both reports found=false. Resolve adds
// the final fallback to the key itself.
type Dictionary interface {
	Lookup(locale, key string) (value string, found bool)
}

// MemoryDictionary is a plain in-memory locale->key->value table.
type MemoryDictionary struct {
	DefaultLocale string
	Locales       map[string]map[string]string
}

// NewMemoryDictionary builds an empty dictionary falling back to
// defaultLocale.
func NewMemoryDictionary(defaultLocale string) *MemoryDictionary {
	return &MemoryDictionary{DefaultLocale: defaultLocale, Locales: make(map[string]map[string]string)}
}

// Set registers one key's translation under a locale.
func (d *MemoryDictionary) Set(locale, key, value string) {
	m, ok := d.Locales[locale]
	if !ok {
		m = make(map[string]string)
		d.Locales[locale] = m
	}
	m[key] = value
}

func (d *MemoryDictionary) Lookup(locale, key string) (string, bool) {
	if m, ok := d.Locales[locale]; ok {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	if locale != d.DefaultLocale {
		if m, ok := d.Locales[d.DefaultLocale]; ok {
			if v, ok := m[key]; ok {
				return v, true
			}
		}
	}
	return "", false
}

// Resolve applies the fallback chain in full: locale -> default locale
// -> the key itself.
func Resolve(d Dictionary, locale, key string) string {
	if d == nil {
		return key
	}
	if v, ok := d.Lookup(locale, key); ok {
		return v
	}
	return key
}

// SQLiteDictionary persists translations in a SQLite table via
// database/sql and the pure-Go glebarez/go-sqlite driver.
type SQLiteDictionary struct {
	db            *sql.DB
	defaultLocale string
}

// OpenSQLiteDictionary opens (creating if absent) a SQLite-backed
// dictionary at path.
func OpenSQLiteDictionary(path, defaultLocale string) (*SQLiteDictionary, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening translation store %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS translations (
	locale TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (locale, key)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing translation store schema: %w", err)
	}
	return &SQLiteDictionary{db: db, defaultLocale: defaultLocale}, nil
}

// Close releases the underlying database handle.
func (d *SQLiteDictionary) Close() error {
	return d.db.Close()
}

// Put inserts or replaces one key's translation under a locale.
func (d *SQLiteDictionary) Put(locale, key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO translations (locale, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(locale, key) DO UPDATE SET value = excluded.value`,
		locale, key, value,
	)
	return err
}

func (d *SQLiteDictionary) Lookup(locale, key string) (string, bool) {
	value, ok := d.lookupRow(locale, key)
	if ok {
		return value, true
	}
	if locale == d.defaultLocale {
		return "", false
	}
	value, ok = d.lookupRow(d.defaultLocale, key)
	return value, ok
}

func (d *SQLiteDictionary) lookupRow(locale, key string) (string, bool) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM translations WHERE locale = ? AND key = ?`, locale, key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			common.Warning("translation lookup failed: %v", err)
		}
		return "", false
	}
	return value, true
}

// Package store persists user shelf preferences in SQLite. Like the rest of
// the app's workers it runs on its own goroutine and talks over channels.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/registry"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Setting keys.
const (
	KeyMaxRecentItems    = "max_recent_items"
	KeyAutoExpireDays    = "auto_expire_days"
	KeyPreventDuplicates = "prevent_duplicates"
	KeyAutoCleanup       = "auto_cleanup"
)

// Keys lists every known setting key in display order.
var Keys = []string{KeyMaxRecentItems, KeyAutoExpireDays, KeyPreventDuplicates, KeyAutoCleanup}

type EventType int

const (
	FetchSettings EventType = iota
	SaveSetting
)

type Request struct {
	Op    EventType
	Key   string
	Value string
}

type Response struct {
	Op       EventType
	Settings map[string]string // Key-value settings
	Err      error
}

type DB struct {
	conn         *sql.DB
	RequestChan  chan Request
	ResponseChan chan Response

	started   atomic.Bool
	closing   chan struct{} // Closed by Close; unblocks the worker
	done      chan struct{} // Closed when Start returns
	closeOnce sync.Once
}

func NewDB() *DB {
	return &DB{
		RequestChan:  make(chan Request, 10),
		ResponseChan: make(chan Response, 10),
		closing:      make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// DefaultPath returns ~/.config/dropshelf/settings.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.db"
	}
	return filepath.Join(home, ".config", "dropshelf", "settings.db")
}

// Open initializes the database connection and schema
func (d *DB) Open(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return err
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return err
	}

	settingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(settingsQuery); err != nil {
		db.Close()
		return fmt.Errorf("create settings table: %w", err)
	}

	d.conn = db
	debug.Log(debug.STORE, "Opened %s", dbPath)
	return nil
}

// Start serves RequestChan until it is closed or Close is called. Requests
// already queued when Close is called are still applied.
func (d *DB) Start() {
	d.started.Store(true)
	defer close(d.done)
	for {
		select {
		case req, ok := <-d.RequestChan:
			if !ok {
				return
			}
			d.handle(req)
		case <-d.closing:
			d.drain()
			return
		}
	}
}

func (d *DB) drain() {
	for {
		select {
		case req, ok := <-d.RequestChan:
			if !ok {
				return
			}
			d.handle(req)
		default:
			return
		}
	}
}

func (d *DB) handle(req Request) {
	switch req.Op {
	case FetchSettings:
		d.handleFetchSettings()
	case SaveSetting:
		d.handleSaveSetting(req.Key, req.Value)
	}
}

func (d *DB) handleFetchSettings() {
	settings, err := d.Settings()
	// Nobody reads responses once Close has been called
	select {
	case d.ResponseChan <- Response{Op: FetchSettings, Settings: settings, Err: err}:
	case <-d.closing:
	}
}

func (d *DB) handleSaveSetting(key, value string) {
	if err := d.Save(key, value); err != nil {
		log.Printf("Store Error saving setting: %v", err)
	}
	// Trigger a fetch to sync settings
	d.handleFetchSettings()
}

// Settings reads every stored setting.
func (d *DB) Settings() (map[string]string, error) {
	rows, err := d.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err == nil {
			settings[key] = value
		}
	}
	return settings, rows.Err()
}

// Save validates and upserts one setting.
func (d *DB) Save(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}
	_, err := d.conn.Exec(
		"INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	debug.Log(debug.STORE, "Saved %s=%s", key, value)
	return nil
}

// Close waits for a running worker to finish, then closes the database.
func (d *DB) Close() {
	d.closeOnce.Do(func() {
		close(d.closing)
		if d.started.Load() {
			<-d.done
		}
		if d.conn != nil {
			d.conn.Close()
		}
	})
}

// Validate checks that value parses for key.
func Validate(key, value string) error {
	switch key {
	case KeyMaxRecentItems, KeyAutoExpireDays:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if n < 0 {
			return fmt.Errorf("%s: must not be negative", key)
		}
	case KeyPreventDuplicates, KeyAutoCleanup:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// ApplySettings overlays stored settings on base. Unknown keys and values
// that do not parse are ignored.
func ApplySettings(base registry.Options, settings map[string]string) registry.Options {
	opts := base
	if v, ok := intSetting(settings, KeyMaxRecentItems); ok {
		opts.MaxEntries = v
	}
	if v, ok := intSetting(settings, KeyAutoExpireDays); ok {
		opts.ExpiryWindow = time.Duration(v) * 24 * time.Hour
	}
	if v, ok := boolSetting(settings, KeyPreventDuplicates); ok {
		opts.Deduplicate = v
	}
	if v, ok := boolSetting(settings, KeyAutoCleanup); ok {
		opts.AutoCleanup = v
	}
	return opts
}

// SettingsFromOptions is the inverse of ApplySettings.
func SettingsFromOptions(opts registry.Options) map[string]string {
	return map[string]string{
		KeyMaxRecentItems:    strconv.Itoa(opts.MaxEntries),
		KeyAutoExpireDays:    strconv.Itoa(int(opts.ExpiryWindow / (24 * time.Hour))),
		KeyPreventDuplicates: strconv.FormatBool(opts.Deduplicate),
		KeyAutoCleanup:       strconv.FormatBool(opts.AutoCleanup),
	}
}

// SortedKeys returns the keys of settings in a stable order, known keys
// first.
func SortedKeys(settings map[string]string) []string {
	rank := make(map[string]int, len(Keys))
	for i, k := range Keys {
		rank[k] = i
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func intSetting(settings map[string]string, key string) (int, bool) {
	s, ok := settings[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		debug.Log(debug.STORE, "Ignoring %s=%q", key, s)
		return 0, false
	}
	return n, true
}

func boolSetting(settings map[string]string, key string) (bool, bool) {
	s, ok := settings[key]
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		debug.Log(debug.STORE, "Ignoring %s=%q", key, s)
		return false, false
	}
	return b, true
}

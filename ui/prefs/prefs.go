// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyLastDir      = "lastDir"
	KeyLastAlbum    = "lastAlbum"
	KeyWindowWidth  = "windowWidth"
	KeyWindowHeight = "windowHeight"
	KeyShowLabels   = "showLabels"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/img-compare/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "img-compare", prefsFile))
}

// LoadFrom reads preferences from path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		log.Printf("Prefs: ignoring %s: %v", p.path, err)
		p.values = make(map[string]interface{})
	}
	return p
}

// Save writes preferences to disk, replacing the file atomically.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

// lookup returns the value stored under key if it has type T.
func lookup[T any](p *Prefs, key string) (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key].(T)
	return v, ok
}

func (p *Prefs) set(key string, val interface{}) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
// JSON numbers always decode as float64.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	if v, ok := lookup[float64](p, key); ok {
		return v
	}
	return fallback
}

func (p *Prefs) SetFloat(key string, val float64) { p.set(key, val) }

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	v, _ := lookup[string](p, key)
	return v
}

func (p *Prefs) SetString(key string, val string) { p.set(key, val) }

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	if v, ok := lookup[bool](p, key); ok {
		return v
	}
	return fallback
}

func (p *Prefs) SetBool(key string, val bool) { p.set(key, val) }

// LastAlbum returns the album id imported most recently.
func (p *Prefs) LastAlbum() string { return p.String(KeyLastAlbum) }

// SetLastAlbum records the album id to restore at the next start.
func (p *Prefs) SetLastAlbum(id string) { p.SetString(KeyLastAlbum, id) }

// LastDir returns the directory files were last opened from.
func (p *Prefs) LastDir() string { return p.String(KeyLastDir) }

func (p *Prefs) SetLastDir(dir string) { p.SetString(KeyLastDir, dir) }

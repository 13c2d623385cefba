// Package layout resolves a vault root into its named lifecycle areas.
//
// A layout is resolved at most once per root for the lifetime of the process:
// repeated Resolve calls for the same root return the same *Layout. The cache
// has an explicit ResetCache for test isolation.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/mvantol/ansuz/internal/apperr"
	"github.com/mvantol/ansuz/internal/models"
)

// Config file names probed under the vault root, in order.
var configNames = []string{".ansuz.yaml", "ansuz.yaml", filepath.Join(".config", "ansuz.yaml")}

// DefaultQualityThreshold gates auto-promotion when the vault config sets none.
const DefaultQualityThreshold = 0.7

// Dirs holds the subdirectory name of each lifecycle area, relative to root.
type Dirs struct {
	Capture    string `yaml:"capture"`
	Fleeting   string `yaml:"fleeting"`
	Literature string `yaml:"literature"`
	Permanent  string `yaml:"permanent"`
	Archive    string `yaml:"archive"`
}

// Validate rejects area names that would escape the root or collapse into it.
func (d *Dirs) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Capture, validation.Required, validation.By(validArea)),
		validation.Field(&d.Fleeting, validation.Required, validation.By(validArea)),
		validation.Field(&d.Literature, validation.Required, validation.By(validArea)),
		validation.Field(&d.Permanent, validation.Required, validation.By(validArea)),
		validation.Field(&d.Archive, validation.Required, validation.By(validArea)),
	)
}

func validArea(value interface{}) error {
	s, _ := value.(string)
	if s == "" || s == "." || s == ".." {
		return fmt.Errorf("area name must be a subdirectory")
	}
	if strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return fmt.Errorf("area name must not contain path separators")
	}
	return nil
}

// Statuses is the configurable status vocabulary of the lifecycle state
// machine. The semantics are fixed; only the names vary per vault.
type Statuses struct {
	Inbox     string `yaml:"inbox"`
	Promoted  string `yaml:"promoted"`
	Published string `yaml:"published"`
	Archived  string `yaml:"archived"`
}

// Validate requires every status name to be set and distinct.
func (s *Statuses) Validate() error {
	if err := validation.ValidateStruct(s,
		validation.Field(&s.Inbox, validation.Required),
		validation.Field(&s.Promoted, validation.Required),
		validation.Field(&s.Published, validation.Required),
		validation.Field(&s.Archived, validation.Required),
	); err != nil {
		return err
	}
	names := map[string]struct{}{}
	for _, n := range []string{s.Inbox, s.Promoted, s.Published, s.Archived} {
		if _, dup := names[n]; dup {
			return fmt.Errorf("status names must be distinct: %q repeats", n)
		}
		names[n] = struct{}{}
	}
	return nil
}

// fileConfig is the shape of the optional per-vault config file. Every field
// is optional; unset fields take defaults.
type fileConfig struct {
	Dirs             Dirs     `yaml:"dirs"`
	Statuses         Statuses `yaml:"statuses"`
	QualityThreshold *float64 `yaml:"quality_threshold"`
}

// Layout is the resolved directory layout of one vault. It is read-only after
// construction and shared by reference across all components.
type Layout struct {
	Root             string
	Dirs             Dirs
	Statuses         Statuses
	QualityThreshold float64
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Layout{}
)

// Resolve returns the layout for root, reading the optional vault config file
// on first resolution. A missing file or missing keys fall back to defaults;
// a present but malformed file is apperr.ErrConfig. Results are memoized by
// absolute root path.
func Resolve(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("layout: resolve root: %w", err)
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if l, ok := cache[abs]; ok {
		return l, nil
	}

	cfg, err := loadFileConfig(abs)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.Dirs.Validate(); err != nil {
		return nil, fmt.Errorf("layout: dirs: %v: %w", err, apperr.ErrConfig)
	}
	if err := cfg.Statuses.Validate(); err != nil {
		return nil, fmt.Errorf("layout: statuses: %v: %w", err, apperr.ErrConfig)
	}
	if *cfg.QualityThreshold < 0 || *cfg.QualityThreshold > 1 {
		return nil, fmt.Errorf("layout: quality_threshold %v out of [0,1]: %w", *cfg.QualityThreshold, apperr.ErrConfig)
	}

	l := &Layout{
		Root:             abs,
		Dirs:             cfg.Dirs,
		Statuses:         cfg.Statuses,
		QualityThreshold: *cfg.QualityThreshold,
	}
	cache[abs] = l
	return l, nil
}

// ResetCache clears the memoization table. Intended for tests.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = map[string]*Layout{}
}

// loadFileConfig probes the conventional config locations under root. Only a
// file that exists but cannot be parsed produces an error.
func loadFileConfig(root string) (*fileConfig, error) {
	cfg := &fileConfig{}
	for _, name := range configNames {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("layout: read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("layout: parse config %s: %v: %w", path, err, apperr.ErrConfig)
		}
		return cfg, nil
	}
	return cfg, nil
}

func applyDefaults(cfg *fileConfig) {
	if cfg.Dirs.Capture == "" {
		cfg.Dirs.Capture = "inbox"
	}
	if cfg.Dirs.Fleeting == "" {
		cfg.Dirs.Fleeting = "fleeting"
	}
	if cfg.Dirs.Literature == "" {
		cfg.Dirs.Literature = "literature"
	}
	if cfg.Dirs.Permanent == "" {
		cfg.Dirs.Permanent = "permanent"
	}
	if cfg.Dirs.Archive == "" {
		cfg.Dirs.Archive = "archive"
	}
	if cfg.Statuses.Inbox == "" {
		cfg.Statuses.Inbox = models.StatusInbox
	}
	if cfg.Statuses.Promoted == "" {
		cfg.Statuses.Promoted = models.StatusPromoted
	}
	if cfg.Statuses.Published == "" {
		cfg.Statuses.Published = models.StatusPublished
	}
	if cfg.Statuses.Archived == "" {
		cfg.Statuses.Archived = models.StatusArchived
	}
	if cfg.QualityThreshold == nil {
		v := DefaultQualityThreshold
		cfg.QualityThreshold = &v
	}
}

// RelFor returns the area name (relative to root) for a note type.
func (l *Layout) RelFor(t models.NoteType) (string, error) {
	switch t {
	case models.TypeFleeting:
		return l.Dirs.Fleeting, nil
	case models.TypeLiterature:
		return l.Dirs.Literature, nil
	case models.TypePermanent:
		return l.Dirs.Permanent, nil
	}
	return "", fmt.Errorf("layout: no directory for note type %q", t)
}

// DirFor returns the absolute target directory for a note type. Pure lookup,
// no I/O.
func (l *Layout) DirFor(t models.NoteType) (string, error) {
	rel, err := l.RelFor(t)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.Root, rel), nil
}

// CaptureDir returns the absolute capture-area path.
func (l *Layout) CaptureDir() string { return filepath.Join(l.Root, l.Dirs.Capture) }

// ArchiveDir returns the absolute archive path.
func (l *Layout) ArchiveDir() string { return filepath.Join(l.Root, l.Dirs.Archive) }

// CatalogPath returns the location of the vault's SQLite metadata catalog.
func (l *Layout) CatalogPath() string { return filepath.Join(l.Root, ".ansuz.db") }

// EnsureExists creates every resolved area directory. Idempotent; existing
// directories are left alone and nothing is ever deleted.
func (l *Layout) EnsureExists() error {
	areas := []string{l.Dirs.Capture, l.Dirs.Fleeting, l.Dirs.Literature, l.Dirs.Permanent, l.Dirs.Archive}
	for _, rel := range areas {
		if err := os.MkdirAll(filepath.Join(l.Root, rel), 0o755); err != nil {
			return fmt.Errorf("layout: create %s: %w", rel, err)
		}
	}
	return nil
}

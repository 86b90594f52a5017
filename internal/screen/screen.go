// Package screen loads the declarative per-screen definitions that replace
// the copy-pasted fetch/join/sort/paginate logic the admin views used to
// carry. One YAML file per screen declares the primary endpoint, the joined
// relations, the searchable fields and the sort comparators.
package screen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/courtside-lab/project-courtside/internal/core/aggregate"
	"github.com/courtside-lab/project-courtside/internal/core/query"
	"github.com/courtside-lab/project-courtside/internal/core/record"
	"gopkg.in/yaml.v3"
)

// ErrNotFound marks lookups of screens that were never configured.
var ErrNotFound = errors.New("screen not found")

// Relations a screen may join against its primary collection.
const (
	RelationDetail   = "detail"
	RelationStadium  = "stadium"
	RelationLocation = "location"
	RelationType     = "type"
	RelationUser     = "user"
)

// Status domains: which canonical status set a screen's records use.
const (
	DomainBooking = "booking"
	DomainBill    = "bill"
)

// JoinSpec declares one relation: where to fetch it, which semantic field
// on the primary record references it, and which semantic field indexes
// the related collection (records index by their own id unless the
// relation is keyed from the other side, like booking details).
type JoinSpec struct {
	Relation   string `yaml:"relation"`
	Endpoint   string `yaml:"endpoint"`
	ForeignKey string `yaml:"foreign_key"`
	KeyField   string `yaml:"key_field"`
}

// Indexable reports whether related records can be fetched individually by
// the missing foreign-key value. Relations indexed by a field other than
// their own id (booking details) can only be loaded in bulk.
func (j JoinSpec) Indexable() bool {
	return j.KeyField == record.SemID
}

// BillSpec points a screen at an auxiliary bill collection for revenue.
type BillSpec struct {
	Endpoint string `yaml:"endpoint"`
}

// Definition is one screen's declarative configuration.
type Definition struct {
	Name         string                     `yaml:"name"`
	Endpoint     string                     `yaml:"endpoint"`
	StatusDomain string                     `yaml:"status_domain"`
	SearchFields []string                   `yaml:"search_fields"`
	SortTypes    map[string]query.FieldType `yaml:"sort_types"`
	Joins        []JoinSpec                 `yaml:"joins"`
	Bills        *BillSpec                  `yaml:"bills"`
}

// Statuses returns the closed status set for the screen's domain.
func (d Definition) Statuses() []aggregate.Status {
	if d.StatusDomain == DomainBill {
		return aggregate.BillStatuses
	}
	return aggregate.BookingStatuses
}

// Canonicalizer returns the status normalizer for the screen's domain.
func (d Definition) Canonicalizer() aggregate.Canonicalizer {
	if d.StatusDomain == DomainBill {
		return aggregate.CanonicalBillStatus
	}
	return aggregate.CanonicalBookingStatus
}

// QueryConfig builds the query-engine configuration for this screen.
func (d Definition) QueryConfig(pageSize int) query.Config {
	return query.Config{
		SearchFields: d.SearchFields,
		SortTypes:    d.SortTypes,
		PageSize:     pageSize,
	}
}

// defaultForeignKeys maps a relation to the semantic field that usually
// references it from the primary record.
var defaultForeignKeys = map[string]string{
	RelationDetail:   record.SemID, // details point back at the booking
	RelationStadium:  record.SemStadiumID,
	RelationLocation: record.SemLocationID,
	RelationType:     record.SemTypeID,
	RelationUser:     record.SemUserID,
}

func (d *Definition) validate() error {
	if strings.TrimSpace(d.Endpoint) == "" {
		return fmt.Errorf("screen %q: endpoint must not be empty", d.Name)
	}
	if d.StatusDomain == "" {
		d.StatusDomain = DomainBooking
	}
	if d.StatusDomain != DomainBooking && d.StatusDomain != DomainBill {
		return fmt.Errorf("screen %q: unknown status_domain %q", d.Name, d.StatusDomain)
	}

	for field, ft := range d.SortTypes {
		if !query.ValidFieldType(ft) {
			return fmt.Errorf("screen %q: field %q has unknown sort type %q", d.Name, field, ft)
		}
	}

	seen := make(map[string]struct{}, len(d.Joins))
	for i := range d.Joins {
		j := &d.Joins[i]
		fk, known := defaultForeignKeys[j.Relation]
		if !known {
			return fmt.Errorf("screen %q: unknown relation %q", d.Name, j.Relation)
		}
		if _, dup := seen[j.Relation]; dup {
			return fmt.Errorf("screen %q: duplicate relation %q", d.Name, j.Relation)
		}
		seen[j.Relation] = struct{}{}

		if strings.TrimSpace(j.Endpoint) == "" {
			return fmt.Errorf("screen %q: relation %q: endpoint must not be empty", d.Name, j.Relation)
		}
		if j.ForeignKey == "" {
			j.ForeignKey = fk
		}
		if j.KeyField == "" {
			if j.Relation == RelationDetail {
				j.KeyField = record.SemBookingID
			} else {
				j.KeyField = record.SemID
			}
		}
	}

	if d.Bills != nil && strings.TrimSpace(d.Bills.Endpoint) == "" {
		return fmt.Errorf("screen %q: bills endpoint must not be empty", d.Name)
	}
	return nil
}

// Repository holds the loaded screen definitions. Screens load once at
// startup and are cached in memory.
type Repository struct {
	screens map[string]Definition
}

// NewFileSystemRepository eagerly loads every *.yaml screen in dir.
// A missing directory is valid (zero screens configured); a malformed or
// duplicate definition is an error.
func NewFileSystemRepository(dir string) (*Repository, error) {
	repo := &Repository{screens: make(map[string]Definition)}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return repo, nil
	}
	if err != nil {
		return nil, fmt.Errorf("screen dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("screen path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading screen dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading screen file %s: %w", path, err)
		}
		if err := repo.add(data); err != nil {
			return nil, fmt.Errorf("screen file %s: %w", path, err)
		}
	}
	return repo, nil
}

func (r *Repository) add(data []byte) error {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("parsing screen: %w", err)
	}
	if def.Name == "" {
		return nil // skip empty / comment-only files
	}
	if err := def.validate(); err != nil {
		return err
	}
	if _, exists := r.screens[def.Name]; exists {
		return fmt.Errorf("screen %q: duplicate screen name (check multiple YAML files)", def.Name)
	}
	r.screens[def.Name] = def
	return nil
}

// NewStaticRepository builds a repository from in-process definitions,
// validated and defaulted the same way file-loaded screens are.
func NewStaticRepository(defs ...Definition) (*Repository, error) {
	repo := &Repository{screens: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if err := def.validate(); err != nil {
			return nil, err
		}
		if _, exists := repo.screens[def.Name]; exists {
			return nil, fmt.Errorf("screen %q: duplicate screen name", def.Name)
		}
		repo.screens[def.Name] = def
	}
	return repo, nil
}

// Get returns the screen with the given name.
func (r *Repository) Get(name string) (Definition, error) {
	def, ok := r.screens[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return def, nil
}

// Names returns the configured screen names.
func (r *Repository) Names() []string {
	names := make([]string, 0, len(r.screens))
	for name := range r.screens {
		names = append(names, name)
	}
	return names
}

// Len returns the number of configured screens.
func (r *Repository) Len() int { return len(r.screens) }

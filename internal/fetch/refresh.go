// Package fetch orchestrates the refresh cycle: fetch the primary
// collection, fan out the auxiliary collections, resolve missing foreign
// keys incrementally, join everything and publish an immutable snapshot.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/courtside-lab/project-courtside/internal/core/aggregate"
	"github.com/courtside-lab/project-courtside/internal/core/index"
	"github.com/courtside-lab/project-courtside/internal/core/join"
	"github.com/courtside-lab/project-courtside/internal/core/record"
	"github.com/courtside-lab/project-courtside/internal/metrics"
	"github.com/courtside-lab/project-courtside/internal/resource"
	"github.com/courtside-lab/project-courtside/internal/screen"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrPrimaryFetch marks a failed primary collection fetch. Fatal for the
// screen: no partial rendering, the caller surfaces a visible error state.
var ErrPrimaryFetch = errors.New("primary resource fetch failed")

// ErrNoSnapshot marks reads against a screen that has not refreshed yet.
var ErrNoSnapshot = errors.New("no snapshot for screen")

// Snapshot is the immutable result of one refresh pass for one screen.
// The presentation boundary only ever reads the derived records here,
// never the raw indexes built along the way.
type Snapshot struct {
	ID          uuid.UUID         `json:"id"`
	Generation  uint64            `json:"generation"`
	Screen      string            `json:"screen"`
	TakenAt     time.Time         `json:"takenAt"`
	Records     []join.ViewRecord `json:"records"`
	Bills       []join.ViewRecord `json:"bills,omitempty"`
	Diagnostics []Diagnostic      `json:"diagnostics,omitempty"`
}

// Service runs refreshes and owns the per-screen snapshots.
type Service struct {
	fetcher resource.Fetcher
	screens *screen.Repository
	metrics *metrics.Metrics

	generation atomic.Uint64

	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewService creates the refresh service.
func NewService(fetcher resource.Fetcher, screens *screen.Repository, m *metrics.Metrics) *Service {
	return &Service{
		fetcher:   fetcher,
		screens:   screens,
		metrics:   m,
		snapshots: make(map[string]*Snapshot),
	}
}

// auxResult is one relation's bulk-fetched index, or the diagnostic that
// replaced it.
type auxResult struct {
	spec  screen.JoinSpec
	index index.Index
	diag  *Diagnostic
}

// Refresh runs a full re-fetch-and-rejoin pass for one screen and
// publishes the resulting snapshot. Only the primary fetch is fatal;
// every auxiliary failure degrades to the Unknown sentinel and a
// diagnostic entry. Each refresh is generation-stamped: a stale pass
// finishing after a newer one has published is discarded, never merged.
func (s *Service) Refresh(ctx context.Context, name string) (*Snapshot, error) {
	def, err := s.screens.Get(name)
	if err != nil {
		return nil, err
	}

	gen := s.generation.Add(1)
	start := time.Now()

	snap, err := s.assemble(ctx, def, gen)
	if err != nil {
		s.metrics.RefreshTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}

	published := s.publish(name, snap)
	outcome := "ok"
	if !published {
		outcome = "stale"
	}
	s.metrics.RefreshTotal.WithLabelValues(name, outcome).Inc()
	s.metrics.RefreshDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	slog.Info("Refresh complete",
		"screen", name,
		"snapshot_id", snap.ID,
		"generation", gen,
		"records", len(snap.Records),
		"diagnostics", len(snap.Diagnostics),
		"published", published,
	)

	if !published {
		// A newer refresh already published; hand the caller the
		// current state instead of the stale pass.
		current, _ := s.Snapshot(name)
		return current, nil
	}
	return snap, nil
}

func (s *Service) assemble(ctx context.Context, def screen.Definition, gen uint64) (*Snapshot, error) {
	primary, err := s.fetcher.Collection(ctx, def.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: screen %s: %v", ErrPrimaryFetch, def.Name, err)
	}

	indexes, bills, diags := s.fetchAuxiliaries(ctx, def, primary)

	records := make([]join.ViewRecord, 0, len(primary))
	for _, p := range primary {
		detail := detailFor(p, def.Joins, indexes)
		records = append(records, join.Join(p, relatedFor(p, detail, def.Joins, indexes)))
	}

	return &Snapshot{
		ID:          uuid.New(),
		Generation:  gen,
		Screen:      def.Name,
		TakenAt:     time.Now().UTC(),
		Records:     records,
		Bills:       bills,
		Diagnostics: diags,
	}, nil
}

// fetchAuxiliaries bulk-fetches every joined relation (and the bill source,
// when declared) concurrently, then resolves foreign keys still missing
// from the bulk indexes one record at a time. Each auxiliary fetch is
// wrapped independently: one failing relation never blocks the others.
func (s *Service) fetchAuxiliaries(ctx context.Context, def screen.Definition, primary []record.RawRecord) (map[string]index.Index, []join.ViewRecord, []Diagnostic) {
	results := make([]auxResult, len(def.Joins))
	var bills []join.ViewRecord
	var billDiag *Diagnostic

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range def.Joins {
		g.Go(func() error {
			collection, err := s.fetcher.Collection(gctx, spec.Endpoint)
			if err != nil {
				d := diagnose(spec.Endpoint, "", err)
				results[i] = auxResult{spec: spec, index: make(index.Index), diag: &d}
				return nil
			}
			results[i] = auxResult{spec: spec, index: index.Build(collection, spec.KeyField)}
			return nil
		})
	}
	if def.Bills != nil {
		g.Go(func() error {
			collection, err := s.fetcher.Collection(gctx, def.Bills.Endpoint)
			if err != nil {
				d := diagnose(def.Bills.Endpoint, "", err)
				billDiag = &d
				return nil
			}
			bills = collection
			return nil
		})
	}
	// Workers only record diagnostics, they never return errors.
	_ = g.Wait()

	var diags []Diagnostic
	indexes := make(map[string]index.Index, len(results))
	for _, res := range results {
		indexes[res.spec.Relation] = res.index
		if res.diag != nil {
			s.metrics.FetchErrors.WithLabelValues(res.spec.Endpoint).Inc()
			diags = append(diags, *res.diag)
		}
	}

	// Incremental resolution runs after the detail index exists: detail
	// records may carry the foreign keys the primary records lack.
	for _, res := range results {
		if res.diag != nil || !res.spec.Indexable() {
			continue
		}
		keys := make([]string, 0, len(primary))
		for _, p := range primary {
			keys = append(keys, effectiveKey(p, detailFor(p, def.Joins, indexes), res.spec.ForeignKey))
		}
		_, missDiags := ResolveMissing(ctx, s.fetcher, res.index, res.spec.Endpoint, keys)
		for range missDiags {
			s.metrics.FetchErrors.WithLabelValues(res.spec.Endpoint).Inc()
		}
		diags = append(diags, missDiags...)
	}

	if billDiag != nil {
		s.metrics.FetchErrors.WithLabelValues(def.Bills.Endpoint).Inc()
		diags = append(diags, *billDiag)
	}
	return indexes, bills, diags
}

// effectiveKey resolves a foreign key from the primary record, falling
// back to its detail record when the primary lacks the field.
func effectiveKey(p, detail record.RawRecord, semantic string) string {
	if id := record.ID(p, semantic); id != "" {
		return id
	}
	if detail != nil {
		return record.ID(detail, semantic)
	}
	return ""
}

// detailFor finds the detail record joined to a primary record, if the
// screen declares a detail relation and the index holds one.
func detailFor(p record.RawRecord, specs []screen.JoinSpec, indexes map[string]index.Index) record.RawRecord {
	for _, spec := range specs {
		if spec.Relation != screen.RelationDetail {
			continue
		}
		key := record.ID(p, spec.ForeignKey)
		if key == "" {
			return nil
		}
		if r, ok := indexes[spec.Relation].Lookup(key); ok {
			return r
		}
		return nil
	}
	return nil
}

func relatedFor(p, detail record.RawRecord, specs []screen.JoinSpec, indexes map[string]index.Index) join.Related {
	rel := join.Related{Detail: detail}
	for _, spec := range specs {
		if spec.Relation == screen.RelationDetail {
			continue
		}
		key := effectiveKey(p, detail, spec.ForeignKey)
		if key == "" {
			continue
		}
		r, ok := indexes[spec.Relation].Lookup(key)
		if !ok {
			continue
		}
		switch spec.Relation {
		case screen.RelationStadium:
			rel.Stadium = r
		case screen.RelationLocation:
			rel.Location = r
		case screen.RelationType:
			rel.Type = r
		case screen.RelationUser:
			rel.User = r
		}
	}
	return rel
}

// publish stores the snapshot unless a newer generation already did.
func (s *Service) publish(name string, snap *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.snapshots[name]; ok && current.Generation > snap.Generation {
		slog.Warn("Discarding stale refresh",
			"screen", name,
			"stale_generation", snap.Generation,
			"current_generation", current.Generation,
		)
		return false
	}
	s.snapshots[name] = snap
	s.metrics.SnapshotRecords.WithLabelValues(name).Set(float64(len(snap.Records)))
	return true
}

// Snapshot returns the last published snapshot for a screen.
func (s *Service) Snapshot(name string) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[name]
	return snap, ok
}

// Summary builds the aggregate bucket for a screen's snapshot in the given
// reporting window. Revenue comes from the screen's bill source when it
// declares one, or from the records themselves on bill-domain screens.
func (s *Service) Summary(name string, w aggregate.Window) (aggregate.Bucket, error) {
	def, err := s.screens.Get(name)
	if err != nil {
		return aggregate.Bucket{}, err
	}
	snap, ok := s.Snapshot(name)
	if !ok {
		return aggregate.Bucket{}, fmt.Errorf("%w: %q", ErrNoSnapshot, name)
	}

	bills := snap.Bills
	if bills == nil && def.StatusDomain == screen.DomainBill {
		bills = snap.Records
	}
	return aggregate.BuildBucket(snap.Records, bills, def.Statuses(), def.Canonicalizer(), w), nil
}

// Recent returns the n most recently created records of a screen's
// snapshot, projected to the stable recent-activity fields.
func (s *Service) Recent(name string, n int) ([]join.ViewRecord, error) {
	if _, err := s.screens.Get(name); err != nil {
		return nil, err
	}
	snap, ok := s.Snapshot(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSnapshot, name)
	}
	return aggregate.Recent(snap.Records, n), nil
}

package fusion

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ironsheep/roster-ocr/internal/record"
)

// DefaultThreshold is the completeness at which an entity becomes
// complete-enough.
const DefaultThreshold = 70.0

// Context holds the identity key → fused record map.
//
// It is the only mutable shared structure in the pipeline. Writes to one key
// are serialized by that entry's lock; merges on different keys only
// contend for the brief map lookup.
type Context struct {
	mu      sync.RWMutex
	entries map[string]*entry

	threshold float64
	important []string
	logger    *slog.Logger
}

type entry struct {
	mu  sync.Mutex
	rec *record.Fused
}

// Option configures a Context.
type Option func(*Context)

// WithThreshold sets the complete-enough threshold (0-100].
func WithThreshold(pct float64) Option {
	return func(c *Context) {
		if pct > 0 && pct <= 100 {
			c.threshold = pct
		}
	}
}

// WithImportantFields replaces the checklist completeness is computed over.
func WithImportantFields(names ...string) Option {
	return func(c *Context) {
		if len(names) > 0 {
			c.important = append([]string(nil), names...)
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewContext creates an empty fusion context.
func NewContext(opts ...Option) *Context {
	c := &Context{
		entries:   make(map[string]*entry),
		threshold: DefaultThreshold,
		important: record.EntityFields,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Threshold returns the complete-enough threshold.
func (c *Context) Threshold() float64 {
	return c.threshold
}

// Change describes what one merge did to its entity.
type Change struct {
	Key     string       `json:"identity_key"`
	Created bool         `json:"created"`
	Updated []string     `json:"updated_fields,omitempty"`
	From    record.State `json:"from_state"`
	To      record.State `json:"to_state"`
}

// Merge folds a candidate into the record for its identity and returns a
// snapshot of the result.
//
// The key is the candidate's own (normalized), else derived from its name
// and number fields, else a hash of its full field set; in the last case
// the record is flagged low-confidence. Each field keeps the most
// informative value ever offered for it, so merging the same candidates in
// any order yields the same record, and an empty incoming value never
// removes an accepted one.
func (c *Context) Merge(cand record.Candidate) (*record.Fused, Change, error) {
	key, fallback := c.keyFor(cand)
	if key == "" {
		return nil, Change{}, fmt.Errorf("candidate from %q has no identity and no fields", cand.Source)
	}

	e := c.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	change := Change{Key: key, From: record.StateAbsent}
	if e.rec == nil {
		e.rec = &record.Fused{Key: key, Fields: record.Fields{}, LowConfidence: fallback}
		change.Created = true
	} else {
		change.From = e.rec.State
	}

	for _, name := range cand.Fields.Names() {
		incoming := cand.Fields[name]
		if incoming.Provenance.Source == "" {
			incoming.Provenance.Source = cand.Source
		}
		if !incoming.Provenance.HasScore && cand.HasScore {
			incoming.Provenance.Score = cand.Score
			incoming.Provenance.HasScore = true
		}
		incoming.Name = name

		current, ok := e.rec.Fields[name]
		if !ok || current.Value.IsEmpty() || moreInformative(rankOf(incoming), rankOf(current)) {
			e.rec.Fields[name] = incoming
			change.Updated = append(change.Updated, name)
		}
	}

	if cand.Source != "" {
		e.rec.Sources = addSource(e.rec.Sources, cand.Source)
	}
	e.rec.Completeness = record.Completeness(e.rec.Fields, c.important)
	e.rec.State = record.StatePartial
	if e.rec.Completeness >= c.threshold {
		e.rec.State = record.StateCompleteEnough
	}
	change.To = e.rec.State

	if change.From != change.To {
		c.logger.Info("entity state changed",
			"key", key,
			"from", change.From.String(),
			"to", change.To.String(),
			"completeness", e.rec.Completeness,
		)
	}
	return e.rec.Clone(), change, nil
}

// Get returns a snapshot of the record for key.
func (c *Context) Get(key string) (*record.Fused, bool) {
	key = record.NormalizeKey(key)
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return nil, false
	}
	return e.rec.Clone(), true
}

// State returns the lifecycle state for key; unknown keys are absent.
func (c *Context) State(key string) record.State {
	if rec, ok := c.Get(key); ok {
		return rec.State
	}
	return record.StateAbsent
}

// Snapshot returns copies of every record, sorted by key.
func (c *Context) Snapshot() []*record.Fused {
	c.mu.RLock()
	entries := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	out := make([]*record.Fused, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.rec != nil {
			out = append(out, e.rec.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Incomplete returns the keys of records still below the threshold, sorted.
// Callers use it to decide which entities are worth another harvesting
// pass.
func (c *Context) Incomplete() []string {
	var keys []string
	for _, rec := range c.Snapshot() {
		if rec.State != record.StateCompleteEnough {
			keys = append(keys, rec.Key)
		}
	}
	return keys
}

// Len returns the number of entities.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Context) keyFor(cand record.Candidate) (string, bool) {
	if k := record.NormalizeKey(cand.Key); k != "" {
		return k, record.IsFallbackKey(k)
	}
	if k := record.KeyFor(cand.Fields); k != "" {
		return k, false
	}
	if len(cand.Fields.Names()) == 0 {
		return "", false
	}
	return record.FallbackKey(cand.Fields), true
}

// entry returns the entry for key, creating it if needed.
func (c *Context) entry(key string) *entry {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok = c.entries[key]; ok {
		return e
	}
	e = &entry{}
	c.entries[key] = e
	return e
}

// addSource inserts src into the sorted, deduplicated list.
func addSource(sources []string, src string) []string {
	i := sort.SearchStrings(sources, src)
	if i < len(sources) && sources[i] == src {
		return sources
	}
	sources = append(sources, "")
	copy(sources[i+1:], sources[i:])
	sources[i] = src
	return sources
}

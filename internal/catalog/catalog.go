package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// #region constants

// Size is the number of records in a complete catalog.
const Size = 64

//go:embed catalog.yaml
var embedded []byte

// ErrUnavailable is returned (wrapped) when reference data cannot be loaded.
var ErrUnavailable = errors.New("catalog unavailable")

// #endregion constants

// #region catalog

// Catalog is a validated, read-only set of records ordered by id.
type Catalog struct {
	records  []Record
	byID     map[int]int
	fallback bool
}

// New validates records and builds a catalog. Every archetype must be
// represented and ids must be unique within [1,64].
func New(records []Record, fallback bool) (*Catalog, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("validate catalog: no records")
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[int]int, len(sorted))
	seen := make(map[Archetype]bool, len(Archetypes))
	for i, r := range sorted {
		if r.ID < 1 || r.ID > Size {
			return nil, fmt.Errorf("validate record %d: id out of range", r.ID)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("validate record %d: duplicate id", r.ID)
		}
		if !r.Archetype.Valid() {
			return nil, fmt.Errorf("validate record %d: unknown archetype %q", r.ID, r.Archetype)
		}
		if r.Dynamics.Drive < 0 || r.Dynamics.Resistance < 0 || r.Dynamics.Balance < 0 {
			return nil, fmt.Errorf("validate record %d: negative dynamics", r.ID)
		}
		byID[r.ID] = i
		seen[r.Archetype] = true
	}
	for _, a := range Archetypes {
		if !seen[a] {
			return nil, fmt.Errorf("validate catalog: archetype %s not represented", a)
		}
	}
	return &Catalog{records: sorted, byID: byID, fallback: fallback}, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Records, false)
}

// Marshal encodes the catalog as a YAML document that Parse accepts.
func (c *Catalog) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(file{Records: c.records})
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return out, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// IsFallback reports whether this is the reduced fallback catalog.
func (c *Catalog) IsFallback() bool { return c.fallback }

// Records returns a copy of all records in id order.
func (c *Catalog) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Get looks up a record by id.
func (c *Catalog) Get(id int) (Record, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// #endregion catalog

// #region subset

// Subset returns a representative subset of at most size records. The
// fallback ids come first, then the remaining records are taken round-robin
// across archetypes in id order, so every archetype stays represented.
// The result is ordered by id.
func (c *Catalog) Subset(size int) []Record {
	if size >= len(c.records) {
		return c.Records()
	}
	if size < 1 {
		return nil
	}

	picked := make(map[int]bool, size)
	for _, id := range FallbackIDs {
		if len(picked) == size {
			break
		}
		if _, ok := c.byID[id]; ok {
			picked[id] = true
		}
	}

	queues := make(map[Archetype][]Record, len(Archetypes))
	for _, r := range c.records {
		if !picked[r.ID] {
			queues[r.Archetype] = append(queues[r.Archetype], r)
		}
	}
	for len(picked) < size {
		progressed := false
		for _, a := range Archetypes {
			if len(picked) == size {
				break
			}
			q := queues[a]
			if len(q) == 0 {
				continue
			}
			picked[q[0].ID] = true
			queues[a] = q[1:]
			progressed = true
		}
		if !progressed {
			break
		}
	}

	out := make([]Record, 0, len(picked))
	for _, r := range c.records {
		if picked[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// #endregion subset

// #region loaders

// Loader produces a catalog or fails with an error wrapping ErrUnavailable.
type Loader interface {
	Load(ctx context.Context) (*Catalog, error)
}

// EmbeddedLoader serves the catalog compiled into the binary.
type EmbeddedLoader struct{}

// Load parses the embedded catalog document.
func (EmbeddedLoader) Load(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c, err := Parse(embedded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c, nil
}

// Default returns the embedded catalog. It panics if the embedded data is
// invalid, which the package tests rule out.
func Default() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadOrFallback runs the loader and substitutes the fallback catalog when
// it fails. The returned catalog is never nil; a non-nil error explains
// why the fallback is in use.
func LoadOrFallback(ctx context.Context, l Loader) (*Catalog, error) {
	if l == nil {
		return Fallback(), fmt.Errorf("%w: no loader configured", ErrUnavailable)
	}
	c, err := l.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return Fallback(), err
	}
	return c, nil
}

// #endregion loaders

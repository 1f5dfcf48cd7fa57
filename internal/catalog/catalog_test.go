package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// #region mock
type failingLoader struct{ err error }

func (f failingLoader) Load(context.Context) (*Catalog, error) { return nil, f.err }

// #endregion mock

// #region embedded-tests
func TestDefaultCatalogComplete(t *testing.T) {
	c := Default()
	if c.Len() != Size {
		t.Fatalf("expected %d records, got %d", Size, c.Len())
	}
	for id := 1; id <= Size; id++ {
		if _, ok := c.Get(id); !ok {
			t.Errorf("record %d missing", id)
		}
	}
	if c.IsFallback() {
		t.Error("embedded catalog must not be flagged as fallback")
	}
}

func TestDefaultCatalogArchetypeCounts(t *testing.T) {
	want := map[Archetype]int{Creation: 4, Development: 35, Transformation: 22, Maturity: 3}
	got := map[Archetype]int{}
	for _, r := range Default().Records() {
		got[r.Archetype]++
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("archetype counts (-want +got):\n%s", diff)
	}
}

func TestDefaultCatalogRecordsHaveText(t *testing.T) {
	for _, r := range Default().Records() {
		if r.Name == "" || r.Label == "" || r.Essence == "" || r.EssenceEN == "" {
			t.Errorf("record %d has empty text fields: %+v", r.ID, r)
		}
		d := r.Dynamics
		if d.Drive+d.Resistance+d.Balance == 0 {
			t.Errorf("record %d has a zero dynamics vector", r.ID)
		}
		if r.Yang+r.Yin != 6 {
			t.Errorf("record %d: yang+yin = %d, want 6", r.ID, r.Yang+r.Yin)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	data, err := c.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(c.Records(), back.Records()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// #endregion embedded-tests

// #region validation-tests
func TestNewRejectsInvalid(t *testing.T) {
	base := fallbackRecords
	tests := []struct {
		name    string
		records func() []Record
	}{
		{"empty", func() []Record { return nil }},
		{"duplicate id", func() []Record {
			rs := append([]Record{}, base...)
			rs[1].ID = rs[0].ID
			return rs
		}},
		{"id out of range", func() []Record {
			rs := append([]Record{}, base...)
			rs[0].ID = 65
			return rs
		}},
		{"unknown archetype", func() []Record {
			rs := append([]Record{}, base...)
			rs[0].Archetype = "stasis"
			return rs
		}},
		{"missing archetype", func() []Record {
			var rs []Record
			for _, r := range base {
				if r.Archetype != Maturity {
					rs = append(rs, r)
				}
			}
			return rs
		}},
		{"negative dynamics", func() []Record {
			rs := append([]Record{}, base...)
			rs[2].Dynamics.Resistance = -1
			return rs
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.records(), false); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("records: [: nope")); err == nil {
		t.Fatal("expected parse error")
	}
}

// #endregion validation-tests

// #region fallback-tests
func TestFallbackCatalog(t *testing.T) {
	c := Fallback()
	if !c.IsFallback() {
		t.Error("expected fallback flag")
	}
	if c.Len() != len(FallbackIDs) {
		t.Fatalf("expected %d records, got %d", len(FallbackIDs), c.Len())
	}
	full := Default()
	for _, r := range c.Records() {
		want, ok := full.Get(r.ID)
		if !ok {
			t.Fatalf("fallback record %d not in catalog", r.ID)
		}
		if diff := cmp.Diff(want, r); diff != "" {
			t.Errorf("fallback record %d drifted from catalog (-want +got):\n%s", r.ID, diff)
		}
	}
}

func TestDefaultRecord(t *testing.T) {
	r := DefaultRecord()
	if r.ID != 4 {
		t.Errorf("expected default record 4, got %d", r.ID)
	}
}

func TestLoadOrFallback(t *testing.T) {
	ctx := context.Background()

	c, err := LoadOrFallback(ctx, EmbeddedLoader{})
	if err != nil || c.Len() != Size {
		t.Fatalf("embedded load: len=%d err=%v", c.Len(), err)
	}

	c, err = LoadOrFallback(ctx, failingLoader{err: errors.New("disk on fire")})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !c.IsFallback() {
		t.Error("expected fallback catalog")
	}

	c, err = LoadOrFallback(ctx, nil)
	if err == nil || c == nil || !c.IsFallback() {
		t.Error("nil loader should yield fallback with error")
	}
}

func TestEmbeddedLoaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (EmbeddedLoader{}).Load(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// #endregion fallback-tests

// #region subset-tests
func TestSubsetPreservesArchetypes(t *testing.T) {
	c := Default()
	for _, level := range []int{64, 32, 16, 8} {
		sub := c.Subset(level)
		if len(sub) != level {
			t.Errorf("level %d: got %d records", level, len(sub))
		}
		seen := map[Archetype]bool{}
		for _, r := range sub {
			seen[r.Archetype] = true
		}
		for _, a := range Archetypes {
			if !seen[a] {
				t.Errorf("level %d: archetype %s missing", level, a)
			}
		}
	}
}

func TestSubsetEightIsFallback(t *testing.T) {
	var got []int
	for _, r := range Default().Subset(8) {
		got = append(got, r.ID)
	}
	if diff := cmp.Diff(FallbackIDs[:], got); diff != "" {
		t.Errorf("subset(8) ids (-want +got):\n%s", diff)
	}
}

func TestSubsetNested(t *testing.T) {
	c := Default()
	prev := map[int]bool{}
	for _, level := range []int{8, 16, 32, 64} {
		cur := map[int]bool{}
		for _, r := range c.Subset(level) {
			cur[r.ID] = true
		}
		for id := range prev {
			if !cur[id] {
				t.Errorf("record %d in smaller subset but not in level %d", id, level)
			}
		}
		prev = cur
	}
}

func TestSubsetOfFallbackCapsAtSize(t *testing.T) {
	if got := len(Fallback().Subset(32)); got != len(FallbackIDs) {
		t.Errorf("expected %d, got %d", len(FallbackIDs), got)
	}
}

// #endregion subset-tests

// #region store-tests
func TestStoreSeedAndLoad(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Seed(ctx, Default()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default().Records(), got.Records()); diff != "" {
		t.Errorf("stored catalog mismatch (-want +got):\n%s", diff)
	}

	// Reseeding replaces rather than appends.
	if err := s.Seed(ctx, Fallback()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("load after reseed: %v", err)
	}
	if got.Len() != len(FallbackIDs) {
		t.Errorf("expected %d records after reseed, got %d", len(FallbackIDs), got.Len())
	}
}

func TestStoreEmptyIsUnavailable(t *testing.T) {
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	if _, err := s.Load(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// #endregion store-tests

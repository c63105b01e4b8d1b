package spot

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSpots(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spots.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write spots file: %v", err)
	}
	return NewStore(path)
}

func TestLoadAssignsSequentialIDs(t *testing.T) {
	st := writeSpots(t, `[
		{"name": "A", "latitude": 1, "longitude": 1, "description": "d1"},
		{"name": "B", "latitude": 2, "longitude": 2, "description": "d2"},
		{"id": 42, "name": "C", "latitude": 3, "longitude": 3, "description": "d3"}
	]`)

	spots := st.Load()
	if len(spots) != 3 {
		t.Fatalf("Load() returned %d spots, want 3", len(spots))
	}
	if spots[0].ID != 1 || spots[1].ID != 2 {
		t.Errorf("auto ids = %d, %d; want 1, 2", spots[0].ID, spots[1].ID)
	}
	if spots[2].ID != 42 {
		t.Errorf("explicit id = %d, want 42", spots[2].ID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if spots := st.Load(); len(spots) != 0 {
		t.Errorf("Load() on missing file = %d spots, want 0", len(spots))
	}
}

func TestLoadMalformedFile(t *testing.T) {
	st := writeSpots(t, `{"not": "a list"`)
	if spots := st.Load(); len(spots) != 0 {
		t.Errorf("Load() on malformed file = %d spots, want 0", len(spots))
	}
}

func TestNearestExactMatch(t *testing.T) {
	st := writeSpots(t, `[
		{"id": 1, "name": "A", "latitude": 39.90, "longitude": 116.40, "description": "d1"}
	]`)

	res, err := st.Nearest(39.90, 116.40)
	if err != nil {
		t.Fatalf("Nearest() error: %v", err)
	}
	if res.ID != 1 || res.Name != "A" {
		t.Errorf("Nearest() = %+v, want spot 1", res.Spot)
	}
	if res.Distance != 0 {
		t.Errorf("Distance = %v, want 0.00", res.Distance)
	}
}

func TestNearestPicksClosest(t *testing.T) {
	spots := []Spot{
		{ID: 1, Name: "Far", Latitude: 10, Longitude: 10},
		{ID: 2, Name: "Near", Latitude: 39.91, Longitude: 116.41},
		{ID: 3, Name: "Mid", Latitude: 41, Longitude: 117},
	}

	res, err := Nearest(spots, 39.90, 116.40)
	if err != nil {
		t.Fatalf("Nearest() error: %v", err)
	}
	if res.ID != 2 {
		t.Errorf("Nearest() picked spot %d, want 2", res.ID)
	}
	for _, s := range spots {
		d := distTo(s, 39.90, 116.40)
		if d < res.Distance-0.01 {
			t.Errorf("spot %d at %.2fkm is closer than chosen %.2fkm", s.ID, d, res.Distance)
		}
	}
}

func TestNearestTieBreakFirstWins(t *testing.T) {
	spots := []Spot{
		{ID: 1, Name: "First", Latitude: 5, Longitude: 5},
		{ID: 2, Name: "Duplicate", Latitude: 5, Longitude: 5},
	}

	res, err := Nearest(spots, 5, 5)
	if err != nil {
		t.Fatalf("Nearest() error: %v", err)
	}
	if res.ID != 1 {
		t.Errorf("tie resolved to spot %d, want first-seen spot 1", res.ID)
	}
}

func TestNearestEmpty(t *testing.T) {
	if _, err := Nearest(nil, 0, 0); err != ErrNoSpots {
		t.Errorf("Nearest(nil) error = %v, want ErrNoSpots", err)
	}
}

func distTo(s Spot, lat, lon float64) float64 {
	res, _ := Nearest([]Spot{s}, lat, lon)
	return res.Distance
}

package spot

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/binxuan98/ai-audio-guide/pkg/geo"
)

// Store loads spots from a static JSON file. It holds no state beyond the
// file path: the dataset is re-read on every request, so edits to the file
// take effect without a restart.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store reading from the given file.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		logger: slog.With("component", "spot_store"),
	}
}

// Load reads the spot collection. A missing or malformed file yields an
// empty slice: callers must treat that as "no data", not as a server fault.
// Records without an id get sequential 1-based ids in file order.
func (s *Store) Load() []Spot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("Failed to read spots file", "path", s.path, "error", err)
		return nil
	}

	var spots []Spot
	if err := json.Unmarshal(data, &spots); err != nil {
		s.logger.Warn("Failed to parse spots file", "path", s.path, "error", err)
		return nil
	}

	for i := range spots {
		if spots[i].ID == 0 {
			spots[i].ID = i + 1
		}
	}
	return spots
}

// Nearest scans the collection and returns the spot closest to the query
// point, with the distance in km rounded to two decimals. Exact ties resolve
// to the first spot in load order. Returns ErrNoSpots on an empty collection.
func (s *Store) Nearest(lat, lon float64) (*Resolved, error) {
	return Nearest(s.Load(), lat, lon)
}

// Nearest resolves the closest spot from an explicit collection.
func Nearest(spots []Spot, lat, lon float64) (*Resolved, error) {
	if len(spots) == 0 {
		return nil, ErrNoSpots
	}

	query := geo.Point{Lat: lat, Lon: lon}
	best := 0
	bestDist := geo.Distance(query, geo.Point{Lat: spots[0].Latitude, Lon: spots[0].Longitude})

	for i := 1; i < len(spots); i++ {
		d := geo.Distance(query, geo.Point{Lat: spots[i].Latitude, Lon: spots[i].Longitude})
		if d < bestDist {
			best = i
			bestDist = d
		}
	}

	return &Resolved{
		Spot:     spots[best],
		Distance: geo.RoundKm(bestDist),
	}, nil
}

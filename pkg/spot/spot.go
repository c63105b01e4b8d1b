package spot

import "errors"

var (
	// ErrNoSpots indicates the spot collection is empty or could not be loaded.
	ErrNoSpots = errors.New("no spots available")
)

// Spot represents a point of interest from the static dataset.
type Spot struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	AudioURL    string  `json:"audio_url,omitempty"`
}

// Resolved is a Spot annotated with per-request data. Only GeneratedContent
// and AudioURL survive a request, via the content cache.
type Resolved struct {
	Spot
	Distance         float64 `json:"distance"`
	GeneratedContent string  `json:"generated_content,omitempty"`
	GuideStyle       string  `json:"guide_style,omitempty"`
	Provider         string  `json:"provider,omitempty"`
	QualityScore     float64 `json:"quality_score,omitempty"`
	Cached           bool    `json:"cached"`
}

package capture

import (
	"time"

	"github.com/pithecene-io/snapclone/types"
)

// SyntheticTitle is the title of the fallback document.
const SyntheticTitle = "Popular Designs on Dribbble"

// SyntheticDocument returns the deterministic document used when the
// provider cannot capture a UI tree. Only the timestamp and URL vary.
func SyntheticDocument(url string, now time.Time) *types.Document {
	return &types.Document{
		Timestamp: now.Format(time.RFC3339),
		URL:       url,
		Title:     SyntheticTitle,
		Elements: []types.Element{
			{
				Type:   "header",
				Text:   "Popular designs",
				Bounds: types.Bounds{X: 0, Y: 0, Width: 100, Height: 50},
			},
			{
				Type:       "gallery",
				ChildCount: 20,
				Bounds:     types.Bounds{X: 0, Y: 50, Width: 1000, Height: 800},
			},
			{
				Type:   "footer",
				Text:   "© 2023 Dribbble",
				Bounds: types.Bounds{X: 0, Y: 850, Width: 1000, Height: 100},
			},
		},
	}
}

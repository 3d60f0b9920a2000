package model

// Page is the structured recognition result of one document page.
// It is produced once per page when JSON output is requested, serialized,
// and then discarded.
type Page struct {
	// Size is the pixel size of the raster the items were recognized on.
	Size Size `json:"size"`

	// Items are the recognized text regions in engine order.
	// An empty page encodes as an empty array, never null.
	Items []Item `json:"items"`
}

// NewPage creates a Page for a raster of the given size.
func NewPage(size Size, items []Item) *Page {
	if items == nil {
		items = make([]Item, 0)
	}
	return &Page{Size: size, Items: items}
}

// Size is a raster size in pixels. Both dimensions are at least 1.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Item is one recognized text region.
type Item struct {
	// Text is the top-ranked candidate string of the region.
	Text string `json:"text"`

	// Rect is the region's bounding box in pixel space.
	// Nil when the engine could not resolve a box; encoded as null.
	Rect *Rect `json:"rect"`
}

// Rect is an axis-aligned rectangle in pixel space with the origin at the
// top-left corner of the raster.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// TextCount returns the number of items that carry non-empty text.
func (p *Page) TextCount() int {
	n := 0
	for _, it := range p.Items {
		if it.Text != "" {
			n++
		}
	}
	return n
}

package document

import (
	"math"

	"rsc.io/pdf"
)

// maxTreeDepth bounds the walk up the page tree when resolving inherited
// attributes, so a cyclic Parent chain cannot loop forever.
const maxTreeDepth = 64

// Box is a rectangle in PDF user space (1/72 inch units), lower-left origin.
type Box struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent.
func (b Box) Width() float64 { return b.URX - b.LLX }

// Height returns the vertical extent.
func (b Box) Height() float64 { return b.URY - b.LLY }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return !(b.Width() > 0) || !(b.Height() > 0) }

// Intersect returns the overlap of b and o. The result is Empty when the
// boxes do not overlap.
func (b Box) Intersect(o Box) Box {
	return Box{
		LLX: math.Max(b.LLX, o.LLX),
		LLY: math.Max(b.LLY, o.LLY),
		URX: math.Min(b.URX, o.URX),
		URY: math.Min(b.URY, o.URY),
	}
}

// geometry is the visible extent of a page after cropping and rotation.
type geometry struct {
	width, height float64
}

// pageGeometry resolves the visible size of a page: CropBox clipped to
// MediaBox, with width and height swapped for quarter-turn rotations.
// ok is false when the page has no usable MediaBox.
func pageGeometry(page pdf.Value) (geometry, bool) {
	media, ok := parseBox(inherited(page, "MediaBox"))
	if !ok {
		return geometry{}, false
	}

	visible := media
	if crop, ok := parseBox(inherited(page, "CropBox")); ok {
		if c := crop.Intersect(media); !c.Empty() {
			visible = c
		}
	}

	g := geometry{width: visible.Width(), height: visible.Height()}
	if rotation(page)%180 != 0 {
		g.width, g.height = g.height, g.width
	}
	return g, true
}

// rotation returns the page's /Rotate value normalized to 0, 90, 180 or 270.
func rotation(page pdf.Value) int {
	v := inherited(page, "Rotate")
	if v.Kind() != pdf.Integer {
		return 0
	}
	r := int(v.Int64() % 360)
	if r < 0 {
		r += 360
	}
	// Rotate must be a multiple of 90; round anything else down.
	return r - r%90
}

// inherited looks key up on the page dictionary and then its ancestors.
func inherited(v pdf.Value, key string) pdf.Value {
	for depth := 0; depth < maxTreeDepth && v.Kind() == pdf.Dict; depth++ {
		if x := v.Key(key); x.Kind() != pdf.Null {
			return x
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

// parseBox reads a four-number rectangle array. PDF allows the corners in
// any order, so they are normalized to lower-left and upper-right.
func parseBox(v pdf.Value) (Box, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return Box{}, false
	}

	var n [4]float64
	for i := range n {
		e := v.Index(i)
		switch e.Kind() {
		case pdf.Integer:
			n[i] = float64(e.Int64())
		case pdf.Real:
			n[i] = e.Float64()
		default:
			return Box{}, false
		}
		if math.IsNaN(n[i]) || math.IsInf(n[i], 0) {
			return Box{}, false
		}
	}

	b := Box{
		LLX: math.Min(n[0], n[2]),
		LLY: math.Min(n[1], n[3]),
		URX: math.Max(n[0], n[2]),
		URY: math.Max(n[1], n[3]),
	}
	if b.Empty() {
		return Box{}, false
	}
	return b, true
}

// Package scrollspy decides which part of the page is active for a given
// scroll position. It works on element rectangles measured by the browser,
// in viewport coordinates (0 is the top edge of the viewport).
package scrollspy

// Kind classifies a tracked element.
type Kind string

const (
	KindSection  Kind = "section"
	KindCategory Kind = "category"
	KindItem     Kind = "item"
)

// Rect is an element's bounding box.
type Rect struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Viewport is the visible area of the page.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Section is a registered element, in document order.
type Section struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	Rect Rect   `json:"rect"`
}

// Band is the focus band as fractions of the viewport height.
type Band struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// MiddleThird is the default focus band.
var MiddleThird = Band{Top: 1.0 / 3, Bottom: 2.0 / 3}

func (b Band) valid() bool {
	return b.Top >= 0 && b.Bottom <= 1 && b.Top < b.Bottom
}

// FocusBand returns the band's vertical span in pixels. An invalid band is
// replaced by MiddleThird.
func FocusBand(vp Viewport, b Band) (top, bottom float64) {
	if !b.valid() {
		b = MiddleThird
	}
	return vp.Height * b.Top, vp.Height * b.Bottom
}

// Active picks the section in focus. Of the sections overlapping the focus
// band the one with the largest overlap wins, earlier sections winning ties.
// When none overlaps, the nearest section wholly above the band stays
// active. Otherwise there is no active section.
func Active(sections []Section, vp Viewport, b Band) (string, bool) {
	top, bottom := FocusBand(vp, b)

	best, bestOverlap := -1, 0.0
	above, aboveBottom := -1, 0.0

	for i, s := range sections {
		r := s.Rect
		if r.Top < bottom && r.Bottom > top {
			overlap := min(r.Bottom, bottom) - max(r.Top, top)
			if best < 0 || overlap > bestOverlap {
				best, bestOverlap = i, overlap
			}
			continue
		}
		if r.Bottom <= top && (above < 0 || r.Bottom > aboveBottom) {
			above, aboveBottom = i, r.Bottom
		}
	}

	switch {
	case best >= 0:
		return sections[best].ID, true
	case above >= 0:
		return sections[above].ID, true
	default:
		return "", false
	}
}

// ofKind returns the sections of kind k, keeping order.
func ofKind(sections []Section, k Kind) []Section {
	var out []Section
	for _, s := range sections {
		if s.Kind == k || (k == KindSection && s.Kind == "") {
			out = append(out, s)
		}
	}
	return out
}

package scrollspy

// Layout is one measurement of the page.
type Layout struct {
	Viewport Viewport      `json:"viewport"`
	Sections []Section     `json:"sections"`
	Band     Band          `json:"band"`
	Expanded string        `json:"expanded,omitempty"`
	Detail   *Rect         `json:"detail,omitempty"`
	Banner   BannerOptions `json:"banner"`
}

// State is the active view state derived from a Layout.
type State struct {
	Section  string         `json:"section"`
	Category string         `json:"category"`
	Item     string         `json:"item"`
	Banner   BannerPosition `json:"banner"`
}

// Evaluate derives the active section, category and item independently,
// and places the banner when an item is expanded.
func Evaluate(l Layout) State {
	var st State
	st.Section, _ = Active(ofKind(l.Sections, KindSection), l.Viewport, l.Band)
	st.Category, _ = Active(ofKind(l.Sections, KindCategory), l.Viewport, l.Band)
	st.Item, _ = Active(ofKind(l.Sections, KindItem), l.Viewport, l.Band)
	if l.Expanded != "" && l.Detail != nil {
		st.Banner = Banner(*l.Detail, l.Viewport, l.Banner)
	}
	return st
}

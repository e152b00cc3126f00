package scrollspy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func layoutAt(offset float64) Layout {
	return Layout{
		Viewport: vp,
		Sections: []Section{
			sec("home", 0+offset, 900+offset),
			sec("portfolio", 900+offset, 3000+offset),
			{ID: "design", Kind: KindCategory, Rect: Rect{Top: 900 + offset, Bottom: 2000 + offset}},
			{ID: "motion", Kind: KindCategory, Rect: Rect{Top: 2000 + offset, Bottom: 3000 + offset}},
			{ID: "a01", Kind: KindItem, Rect: Rect{Top: 1000 + offset, Bottom: 1400 + offset}},
		},
		Expanded: "a01",
		Detail:   &Rect{Top: 1000 + offset, Bottom: 1400 + offset, Left: 200, Right: 1000},
		Banner:   BannerOptions{Width: 300, Margin: 16, Top: 8},
	}
}

func TestEvaluate(t *testing.T) {
	st := Evaluate(layoutAt(0))
	assert.Equal(t, "home", st.Section)
	assert.Empty(t, st.Category)
	assert.Empty(t, st.Item)
	assert.False(t, st.Banner.Visible)

	st = Evaluate(layoutAt(-1100))
	assert.Equal(t, "portfolio", st.Section)
	assert.Equal(t, "design", st.Category)
	assert.Equal(t, "a01", st.Item)
	assert.True(t, st.Banner.Visible)
	assert.Equal(t, 200.0, st.Banner.X)
}

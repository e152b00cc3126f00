package scrollspy

// BannerOptions sizes and places the floating banner of an expanded item.
type BannerOptions struct {
	Width  float64 `json:"width"`
	Margin float64 `json:"margin"`
	Top    float64 `json:"top"`
}

// BannerPosition is where the banner is drawn, in viewport coordinates.
type BannerPosition struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Banner places the banner for an expanded item whose detail section is
// detail. The banner shows only while the section has scrolled partly past
// the top of the viewport. It follows the section's left edge, clamped so it
// stays within the viewport margins.
func Banner(detail Rect, vp Viewport, opts BannerOptions) BannerPosition {
	if !(detail.Top < 0 && detail.Bottom > 0) {
		return BannerPosition{}
	}

	lo := opts.Margin
	hi := vp.Width - opts.Margin - opts.Width
	x := detail.Left
	if hi < lo {
		x = lo
	} else {
		x = min(max(x, lo), hi)
	}

	return BannerPosition{Visible: true, X: x, Y: opts.Top}
}

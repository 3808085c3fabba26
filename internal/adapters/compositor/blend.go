package compositor

import (
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

// blend combines premultiplied source s over destination d per channel.
// s is already scaled by the layer opacity.
func blend(mode domain.BlendMode, s, d float32, sa, da float32) float32 {
	switch mode {
	case domain.BlendAdd:
		return min(s+d, 1)
	case domain.BlendMultiply:
		return s*d + s*(1-da) + d*(1-sa)
	case domain.BlendScreen:
		return s + d - s*d
	default:
		return s + d*(1-sa)
	}
}

// draw blends layer into dst at its placement offset. Pixels falling outside
// dst are clipped.
func draw(dst *domain.Image, layer *domain.Image, p domain.Placement) {
	if layer == nil || p.Opacity <= 0 {
		return
	}
	opacity := min(p.Opacity, 1)

	x0, y0 := max(p.OffsetX, 0), max(p.OffsetY, 0)
	x1, y1 := min(p.OffsetX+layer.Width, dst.Width), min(p.OffsetY+layer.Height, dst.Height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			si := ((y-p.OffsetY)*layer.Width + (x - p.OffsetX)) * 4
			di := (y*dst.Width + x) * 4
			sa := layer.Pix[si+3] * opacity
			da := dst.Pix[di+3]
			for c := range 4 {
				dst.Pix[di+c] = blend(p.Blend, layer.Pix[si+c]*opacity, dst.Pix[di+c], sa, da)
			}
		}
	}
}

// mix adds track into dst at its offset, scaled by its gain. Channels beyond
// those of the track repeat the track's channels.
func mix(dst *domain.AudioBlock, t ports.Track) {
	src := t.Audio
	if src == nil || src.Channels == 0 || t.Gain == 0 {
		return
	}
	frames := dst.Frames()
	for i := range src.Frames() {
		f := t.Offset + i
		if f < 0 {
			continue
		}
		if f >= frames {
			return
		}
		for c := range dst.Channels {
			dst.Samples[f*dst.Channels+c] += src.Samples[i*src.Channels+c%src.Channels] * t.Gain
		}
	}
}

package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// MediaKind is the closed set of data kinds a pin or processor can carry.
type MediaKind uint8

const (
	// KindImage is a premultiplied RGBA raster.
	KindImage MediaKind = 1 << iota
	// KindAudio is a block of interleaved float samples.
	KindAudio
)

func (k MediaKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// KindSet is a set of media kinds.
type KindSet uint8

// Kinds builds a set from the given kinds.
func Kinds(kinds ...MediaKind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= KindSet(k)
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k MediaKind) bool {
	return s&KindSet(k) != 0
}

func (s KindSet) String() string {
	var parts []string
	for _, k := range []MediaKind{KindImage, KindAudio} {
		if s.Has(k) {
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, "+")
}

// Image is an immutable premultiplied RGBA buffer, four float32 per pixel, row-major.
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

// NewImage allocates a transparent image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]float32, width*height*4)}
}

// SolidImage allocates an image filled with c.
func SolidImage(width, height int, c Color) *Image {
	img := NewImage(width, height)
	p := c.Premultiplied()
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], p[:])
	}
	return img
}

// At returns the premultiplied pixel at (x, y).
func (img *Image) At(x, y int) Color {
	i := (y*img.Width + x) * 4
	return Color{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

// Validate reports an error unless Pix holds exactly Width*Height pixels.
func (img *Image) Validate() error {
	if img.Width < 0 || img.Height < 0 || len(img.Pix) != img.Width*img.Height*4 {
		err := zerr.With(zerr.Wrap(ErrMalformedBuffer, "image buffer does not match its size"), "width", img.Width)
		return zerr.With(zerr.With(err, "height", img.Height), "len", len(img.Pix))
	}
	return nil
}

// Bytes returns the buffer size in bytes.
func (img *Image) Bytes() int64 {
	if img == nil {
		return 0
	}
	return int64(len(img.Pix)) * 4
}

// AudioBlock is an immutable block of interleaved float32 samples.
type AudioBlock struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// NewAudioBlock allocates a silent block holding frames sample frames.
func NewAudioBlock(sampleRate, channels, frames int) *AudioBlock {
	return &AudioBlock{SampleRate: sampleRate, Channels: channels, Samples: make([]float32, frames*channels)}
}

// Frames returns the number of sample frames in the block.
func (b *AudioBlock) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Validate reports an error unless Samples holds whole frames of Channels samples.
func (b *AudioBlock) Validate() error {
	if b.Channels <= 0 || len(b.Samples)%b.Channels != 0 {
		err := zerr.With(zerr.Wrap(ErrMalformedBuffer, "audio buffer does not hold whole frames"), "channels", b.Channels)
		return zerr.With(err, "len", len(b.Samples))
	}
	return nil
}

// Bytes returns the buffer size in bytes.
func (b *AudioBlock) Bytes() int64 {
	if b == nil {
		return 0
	}
	return int64(len(b.Samples)) * 4
}

// Output is what a processor or the compositor produces. Either field may be nil.
type Output struct {
	Image *Image
	Audio *AudioBlock
}

// Kinds returns the set of kinds present in o.
func (o Output) Kinds() KindSet {
	var s KindSet
	if o.Image != nil {
		s |= KindSet(KindImage)
	}
	if o.Audio != nil {
		s |= KindSet(KindAudio)
	}
	return s
}

// Validate checks the shape of every buffer present in o.
func (o Output) Validate() error {
	if o.Image != nil {
		if err := o.Image.Validate(); err != nil {
			return err
		}
	}
	if o.Audio != nil {
		return o.Audio.Validate()
	}
	return nil
}

// Cost is the memory accounted for o in the result cache.
func (o Output) Cost() int64 {
	return o.Image.Bytes() + o.Audio.Bytes()
}

// Format describes the shape of requested media.
type Format struct {
	Width      int
	Height     int
	SampleRate int
	Channels   int
}

// Placeholder returns the neutral output of kind k: transparent or silent.
func (f Format) Placeholder(k MediaKind, frames int) Output {
	switch k {
	case KindImage:
		return Output{Image: NewImage(f.Width, f.Height)}
	case KindAudio:
		return Output{Audio: NewAudioBlock(f.SampleRate, f.Channels, frames)}
	default:
		return Output{}
	}
}

// BlendMode selects how a layer is combined with what lies below it.
type BlendMode uint8

const (
	// BlendNormal is source-over.
	BlendNormal BlendMode = iota
	// BlendAdd sums source and destination.
	BlendAdd
	// BlendMultiply multiplies source and destination.
	BlendMultiply
	// BlendScreen is the inverse multiply of the inverses.
	BlendScreen
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendAdd:
		return "add"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	default:
		return "unknown"
	}
}

// Placement carries how a top-level component is placed into the composite.
type Placement struct {
	Blend   BlendMode
	Opacity float32
	OffsetX int
	OffsetY int
	Gain    float32
}

// DefaultPlacement is fully opaque, unshifted, unity gain.
func DefaultPlacement() Placement {
	return Placement{Blend: BlendNormal, Opacity: 1, Gain: 1}
}

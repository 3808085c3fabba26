package cas

import (
	"context"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

// DecoderCacheSize bounds the decoded objects a Decoder keeps.
const DecoderCacheSize = 256

var _ ports.MediaDecoder = (*Decoder)(nil)

// Decoder implements ports.MediaDecoder over stores written by Store. A
// source names the root directory of a store. Manifests and decoded objects
// are cached.
type Decoder struct {
	mu        sync.Mutex
	manifests map[string]*Manifest

	images *lru.Cache[string, *domain.Image]
	audio  *lru.Cache[string, *domain.AudioBlock]
}

// NewDecoder creates a Decoder.
func NewDecoder() (*Decoder, error) {
	images, err := lru.New[string, *domain.Image](DecoderCacheSize)
	if err != nil {
		return nil, err
	}
	audio, err := lru.New[string, *domain.AudioBlock](DecoderCacheSize)
	if err != nil {
		return nil, err
	}
	return &Decoder{manifests: make(map[string]*Manifest), images: images, audio: audio}, nil
}

// DecodeFrame returns the last stored frame starting at or before at, or the
// first frame when at precedes all of them.
func (d *Decoder) DecodeFrame(ctx context.Context, source string, at domain.Time, format domain.Format) (*domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := d.manifest(source)
	if err != nil {
		return nil, err
	}
	if m.Format.Width != format.Width || m.Format.Height != format.Height {
		return nil, mismatch(source, m.Format, format)
	}

	frames := m.Frames
	i := sort.Search(len(frames), func(i int) bool { return frames[i].At > at })
	for i = max(i-1, 0); i < len(frames); i++ {
		if frames[i].Image != "" {
			return d.image(source, frames[i].Image)
		}
	}
	return domain.NewImage(format.Width, format.Height), nil
}

// DecodeAudio returns the stored samples covering span. Gaps are silent.
func (d *Decoder) DecodeAudio(ctx context.Context, source string, span domain.Span, format domain.Format) (*domain.AudioBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := d.manifest(source)
	if err != nil {
		return nil, err
	}
	if m.Format.SampleRate != format.SampleRate || m.Format.Channels != format.Channels {
		return nil, mismatch(source, m.Format, format)
	}

	out := domain.NewAudioBlock(format.SampleRate, format.Channels, domain.SamplesIn(span.Length(), format.SampleRate))
	for _, f := range m.Frames {
		if f.Audio == "" {
			continue
		}
		block, err := d.block(source, f.Audio)
		if err != nil {
			return nil, err
		}
		offset := domain.SamplesIn(f.At-span.Start, format.SampleRate) * format.Channels
		for i, v := range block.Samples {
			if j := offset + i; j >= 0 && j < len(out.Samples) {
				out.Samples[j] = v
			}
		}
	}
	return out, nil
}

func (d *Decoder) manifest(source string) (*Manifest, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.manifests[source]; ok {
		return m, nil
	}
	m, err := ReadManifest(source)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(m.Frames, func(i, j int) bool { return m.Frames[i].At < m.Frames[j].At })
	d.manifests[source] = m
	return m, nil
}

func (d *Decoder) image(source, hash string) (*domain.Image, error) {
	if img, ok := d.images.Get(source + "/" + hash); ok {
		return img, nil
	}
	img, err := ReadImage(source, hash)
	if err != nil {
		return nil, err
	}
	d.images.Add(source+"/"+hash, img)
	return img, nil
}

func (d *Decoder) block(source, hash string) (*domain.AudioBlock, error) {
	if b, ok := d.audio.Get(source + "/" + hash); ok {
		return b, nil
	}
	b, err := ReadAudio(source, hash)
	if err != nil {
		return nil, err
	}
	d.audio.Add(source+"/"+hash, b)
	return b, nil
}

func mismatch(source string, stored, requested domain.Format) error {
	err := zerr.With(zerr.Wrap(domain.ErrDecodeFailed, "stored format does not match request"), "source", source)
	err = zerr.With(err, "stored", stored)
	return zerr.With(err, "requested", requested)
}

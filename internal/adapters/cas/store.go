// Package cas implements a content-addressed frame store. Exported frames are
// split into image and audio objects named by the xxhash of their encoding,
// so repeated frames are stored once, and a manifest lists every frame in order.
package cas

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// ManifestName is the file listing the stored frames.
	ManifestName = "manifest.json"
	objectsDir   = "objects"

	dirPerm  = 0o750
	filePerm = 0o644
)

var _ ports.Encoder = (*Store)(nil)

// FrameEntry is one frame of the manifest.
type FrameEntry struct {
	Index int64       `json:"index"`
	At    domain.Time `json:"at"`
	Image string      `json:"image,omitempty"`
	Audio string      `json:"audio,omitempty"`
}

// Manifest describes a stored export.
type Manifest struct {
	Format domain.Format `json:"format"`
	Frames []FrameEntry  `json:"frames"`
}

// Store implements ports.Encoder by writing into a directory.
type Store struct {
	root string

	mu       sync.Mutex
	manifest Manifest
	written  map[string]struct{}
}

// NewStore creates a Store writing below root.
func NewStore(root string) *Store {
	return &Store{
		root:    filepath.Clean(root),
		written: make(map[string]struct{}),
	}
}

// Accepts takes any format with a positive size and audio shape.
func (s *Store) Accepts(format domain.Format) error {
	if format.Width <= 0 || format.Height <= 0 || format.SampleRate <= 0 || format.Channels <= 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidArgument, "format has an empty dimension"), "format", fmt.Sprintf("%+v", format))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest.Format = format
	return nil
}

// WriteFrame stores the frame's image and audio objects and appends it to the
// manifest.
func (s *Store) WriteFrame(ctx context.Context, frame ports.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := FrameEntry{Index: frame.Index, At: frame.At}
	var err error
	if frame.Image != nil {
		if entry.Image, err = s.put(encodeImage(frame.Image)); err != nil {
			return zerr.With(err, "frame", frame.Index)
		}
	}
	if frame.Audio != nil {
		if entry.Audio, err = s.put(encodeAudio(frame.Audio)); err != nil {
			return zerr.With(err, "frame", frame.Index)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest.Frames = append(s.manifest.Frames, entry)
	return nil
}

// Finish writes the manifest.
func (s *Store) Finish(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	data, err := json.MarshalIndent(s.manifest, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return zerr.Wrap(err, "failed to marshal manifest")
	}

	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create store directory"), "path", s.root)
	}
	path := filepath.Join(s.root, ManifestName)
	//nolint:gosec // Path is constructed from the store root
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write manifest"), "path", path)
	}
	return nil
}

// Objects returns the number of distinct objects written so far.
func (s *Store) Objects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

// put writes data under its hash unless an object with that hash exists.
func (s *Store) put(data []byte) (string, error) {
	hash := fmt.Sprintf("%016x", xxhash.Sum64(data))

	s.mu.Lock()
	_, done := s.written[hash]
	s.mu.Unlock()
	if done {
		return hash, nil
	}

	path := objectPath(s.root, hash)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create object directory"), "path", path)
	}
	//nolint:gosec // Path is constructed from the store root and a hash
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to write object"), "path", path)
	}

	s.mu.Lock()
	s.written[hash] = struct{}{}
	s.mu.Unlock()
	return hash, nil
}

func objectPath(root, hash string) string {
	return filepath.Join(root, objectsDir, hash[:2], hash)
}

// ReadManifest loads the manifest stored below root.
func ReadManifest(root string) (*Manifest, error) {
	path := filepath.Join(filepath.Clean(root), ManifestName)
	//nolint:gosec // Path is constructed from the store root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, "no manifest in store"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to unmarshal manifest"), "path", path)
	}
	return &m, nil
}

// ReadImage loads the image object hash stored below root.
func ReadImage(root, hash string) (*domain.Image, error) {
	data, err := readObject(root, hash)
	if err != nil {
		return nil, err
	}
	var hdr [2]uint32
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, corrupt(hash, err)
	}
	img := domain.NewImage(int(hdr[0]), int(hdr[1]))
	if err := binary.Read(r, binary.LittleEndian, img.Pix); err != nil {
		return nil, corrupt(hash, err)
	}
	return img, nil
}

// ReadAudio loads the audio object hash stored below root.
func ReadAudio(root, hash string) (*domain.AudioBlock, error) {
	data, err := readObject(root, hash)
	if err != nil {
		return nil, err
	}
	var hdr [2]uint32
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, corrupt(hash, err)
	}
	block := &domain.AudioBlock{
		SampleRate: int(hdr[0]),
		Channels:   int(hdr[1]),
		Samples:    make([]float32, r.Len()/4),
	}
	if err := binary.Read(r, binary.LittleEndian, block.Samples); err != nil {
		return nil, corrupt(hash, err)
	}
	return block, nil
}

func readObject(root, hash string) ([]byte, error) {
	if len(hash) < 2 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidArgument, "object hash is too short"), "hash", hash)
	}
	path := objectPath(filepath.Clean(root), hash)
	//nolint:gosec // Path is constructed from the store root and a hash
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read object"), "path", path)
	}
	if got := fmt.Sprintf("%016x", xxhash.Sum64(data)); got != hash {
		return nil, corrupt(hash, fmt.Errorf("content hashes to %s", got))
	}
	return data, nil
}

func corrupt(hash string, err error) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrDecodeFailed, "object is corrupt"), "hash", hash), "cause", err.Error())
}

func encodeImage(img *domain.Image) []byte {
	var buf bytes.Buffer
	buf.Grow(8 + len(img.Pix)*4)
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(img.Width), uint32(img.Height)}) //nolint:gosec // sizes are positive ints
	_ = binary.Write(&buf, binary.LittleEndian, img.Pix)
	return buf.Bytes()
}

func encodeAudio(b *domain.AudioBlock) []byte {
	var buf bytes.Buffer
	buf.Grow(8 + len(b.Samples)*4)
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(b.SampleRate), uint32(b.Channels)}) //nolint:gosec // rates are positive ints
	_ = binary.Write(&buf, binary.LittleEndian, b.Samples)
	return buf.Bytes()
}

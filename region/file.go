package region

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// FileRegion is a Region backed by a memory-mapped, read-only file image.
// It is the concrete loader the spec treats as an external collaborator:
// an on-disk ELF/PE/raw image, mapped once and addressed from a base.
type FileRegion struct {
	f    *os.File
	m    mmap.MMap
	base uint64
}

// OpenFile memory-maps path read-only and addresses its contents starting
// at base.
func OpenFile(path string, base uint64) (*FileRegion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "region: open %s", path)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "region: mmap %s", path)
	}
	return &FileRegion{f: f, m: m, base: base}, nil
}

// Close unmaps the image and closes the underlying file.
func (r *FileRegion) Close() error {
	if err := r.m.Unmap(); err != nil {
		r.f.Close()
		return errors.Wrap(err, "region: unmap")
	}
	return r.f.Close()
}

func (r *FileRegion) Len() uint64 { return uint64(len(r.m)) }

func (r *FileRegion) At(addr uint64) (byte, bool) {
	if addr < r.base {
		return 0, false
	}
	off := addr - r.base
	if off >= uint64(len(r.m)) {
		return 0, false
	}
	return r.m[off], true
}

func (r *FileRegion) Iter(from uint64) Stream {
	return &fileStream{r: r, pos: from}
}

type fileStream struct {
	r   *FileRegion
	pos uint64
}

func (s *fileStream) Next() (*byte, bool) {
	b, ok := s.r.At(s.pos)
	if !ok {
		return nil, false
	}
	s.pos++
	return &b, true
}

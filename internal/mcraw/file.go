package mcraw

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Source is a seekable, borrowed view over container bytes. The parser
// never copies the whole container; it only slices this view.
type Source struct {
	data    []byte
	mmapped bool
}

// OpenFile maps path read-only and returns a Source backed by the
// mapping. When mmap is unavailable (unsupported filesystem, non-Unix
// build, etc.) it falls back to reading the whole file into memory, the
// same fallback OpenReader below takes for an arbitrary io.ReaderAt.
func OpenFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(stat.Size())
	if size == 0 {
		return &Source{data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &Source{data: data, mmapped: true}, nil
	}
	return OpenReader(f, int64(size))
}

// OpenReader reads size bytes from r via ReadAt into memory. Used for
// container sources that aren't backed by a mappable file descriptor,
// such as an in-memory buffer already wrapped as a bytes.Reader, or
// hosts where mmap support is absent.
func OpenReader(r io.ReaderAt, size int64) (*Source, error) {
	out := make([]byte, size)
	var off int64
	for off < size {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err != nil {
			if err == io.EOF && off == size {
				break
			}
			return nil, err
		}
	}
	return &Source{data: out}, nil
}

// FromBytes wraps an already-resident buffer without copying.
func FromBytes(b []byte) *Source {
	return &Source{data: b}
}

// Bytes returns the full borrowed view. Callers must not retain slices
// of it past Close.
func (s *Source) Bytes() []byte { return s.data }

// Len returns the size of the container in bytes.
func (s *Source) Len() int { return len(s.data) }

// Close releases the mapping, if any.
func (s *Source) Close() error {
	if s == nil || s.data == nil {
		return nil
	}
	if s.mmapped {
		err := unix.Munmap(s.data)
		s.data = nil
		return err
	}
	s.data = nil
	return nil
}

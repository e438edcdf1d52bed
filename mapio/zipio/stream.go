package zipio

import (
	"io"

	"github.com/Cleptomanis/warzone2100/mapio"
)

// binaryStream adapts one archive entry to the mapio.BinaryStream contract.
// A stream is in exactly one mode for its lifetime and holds a share of the
// archive handle so the archive outlives the facade while the stream is
// open.
type binaryStream struct {
	archive *wrappedArchive
	mode    mapio.OpenMode
	closed  bool

	// read state
	rc           io.ReadCloser
	lookahead    byte
	hasLookahead bool

	// write state
	filename     string
	buf          []byte
	fixedLastMod bool
}

// openForReading opens a read stream over the located entry.
func openForReading(e *entry, archive *wrappedArchive) *binaryStream {
	if archive == nil {
		return nil
	}
	rc, err := e.open()
	if err != nil {
		return nil
	}
	archive.retain()
	return &binaryStream{
		archive: archive,
		mode:    mapio.ModeRead,
		rc:      rc,
	}
}

// openForWriting opens a write stream that buffers in memory and registers
// the buffer as a named entry at Close.
func openForWriting(filename string, archive *wrappedArchive, fixedLastMod bool) *binaryStream {
	if filename == "" || archive == nil {
		return nil
	}
	archive.retain()
	return &binaryStream{
		archive:      archive,
		mode:         mapio.ModeWrite,
		filename:     filename,
		fixedLastMod: fixedLastMod,
	}
}

// ReadBytes drains a pending lookahead byte first, then forwards the
// remainder to the entry reader. A short read below len(p) is not an error.
func (s *binaryStream) ReadBytes(p []byte) (int, error) {
	if s.mode != mapio.ModeRead {
		return 0, mapio.ErrUnsupported
	}
	if s.rc == nil {
		return 0, mapio.ErrClosed
	}
	extra := 0
	if s.hasLookahead && len(p) > 0 {
		p[0] = s.lookahead
		s.hasLookahead = false
		p = p[1:]
		extra = 1
	}
	n, err := io.ReadFull(s.rc, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	if err != nil {
		if extra > 0 {
			// The lookahead byte was already produced.
			return extra, nil
		}
		return 0, err
	}
	return n + extra, nil
}

// WriteBytes appends to the in-memory write buffer. The buffer grows with at
// least 50% headroom to bound the reallocation count.
func (s *binaryStream) WriteBytes(p []byte) (int, error) {
	if s.mode != mapio.ModeWrite {
		return 0, mapio.ErrUnsupported
	}
	if s.closed {
		return 0, mapio.ErrClosed
	}
	if free := cap(s.buf) - len(s.buf); free < len(p) {
		newCap := cap(s.buf) + max(cap(s.buf)/2, len(p))
		if newCap < 1024 {
			newCap = 1024
		}
		grown := make([]byte, len(s.buf), newCap)
		copy(grown, s.buf)
		s.buf = grown
	}
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// Close releases the entry reader (read mode) or transfers ownership of the
// buffered bytes to the archive as a named entry with overwrite semantics
// (write mode). Close is idempotent; redundant calls are no-op successes.
func (s *binaryStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.archive.release()

	if s.mode == mapio.ModeRead {
		if s.rc != nil {
			err := s.rc.Close()
			s.rc = nil
			return err
		}
		return nil
	}

	if len(s.buf) > 0 && s.filename != "" {
		s.archive.addEntry(s.filename, s.buf, s.fixedLastMod)
		// Ownership of the buffer has transferred to the archive.
		s.buf = nil
		s.filename = ""
	}
	return nil
}

// EndOfStream probes for end of stream with a speculative one-byte read. The
// byte, if obtained, is cached and yielded by the next ReadBytes call; true
// is reported only once that speculative read fails.
func (s *binaryStream) EndOfStream() bool {
	if s.mode != mapio.ModeRead || s.rc == nil {
		return false
	}
	if s.hasLookahead {
		// At least one more byte to read.
		return false
	}
	var probe [1]byte
	if _, err := io.ReadFull(s.rc, probe[:]); err != nil {
		return true
	}
	s.lookahead = probe[0]
	s.hasLookahead = true
	return false
}

// Compile-time interface check.
var _ mapio.BinaryStream = (*binaryStream)(nil)

package stdio

import (
	"io"

	"github.com/go-git/go-billy/v5"

	"github.com/Cleptomanis/warzone2100/mapio"
)

// fileStream adapts a billy.File to the mapio.BinaryStream contract. Read
// mode keeps a one-byte lookahead so EndOfStream can probe without a
// dedicated peek primitive; write mode passes bytes straight through.
type fileStream struct {
	file   billy.File
	mode   mapio.OpenMode
	closed bool

	lookahead    byte
	hasLookahead bool
}

// ReadBytes drains a pending lookahead byte, then reads the remainder from
// the file. A short read below len(p) is not an error.
func (s *fileStream) ReadBytes(p []byte) (int, error) {
	if s.mode != mapio.ModeRead {
		return 0, mapio.ErrUnsupported
	}
	if s.closed {
		return 0, mapio.ErrClosed
	}
	extra := 0
	if s.hasLookahead && len(p) > 0 {
		p[0] = s.lookahead
		s.hasLookahead = false
		p = p[1:]
		extra = 1
	}
	n, err := io.ReadFull(s.file, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	if err != nil {
		if extra > 0 {
			return extra, nil
		}
		return 0, err
	}
	return n + extra, nil
}

// WriteBytes writes len(p) bytes to the file.
func (s *fileStream) WriteBytes(p []byte) (int, error) {
	if s.mode != mapio.ModeWrite {
		return 0, mapio.ErrUnsupported
	}
	if s.closed {
		return 0, mapio.ErrClosed
	}
	return s.file.Write(p)
}

// Close closes the underlying file. Idempotent.
func (s *fileStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

// EndOfStream probes for end of file with a speculative one-byte read.
func (s *fileStream) EndOfStream() bool {
	if s.mode != mapio.ModeRead || s.closed {
		return false
	}
	if s.hasLookahead {
		return false
	}
	var probe [1]byte
	if _, err := io.ReadFull(s.file, probe[:]); err != nil {
		return true
	}
	s.lookahead = probe[0]
	s.hasLookahead = true
	return false
}

// Compile-time interface check.
var _ mapio.BinaryStream = (*fileStream)(nil)

package zipio

import (
	"fmt"
	"io"
	"math"

	"github.com/Cleptomanis/warzone2100/mapio"
)

// sourceOp is the tagged operation set of the pluggable-source protocol the
// archive backend drives against a caller-supplied SourceReadProvider.
type sourceOp int

const (
	srcOpen sourceOp = iota
	srcRead
	srcClose
	srcStat
	srcError
	srcFree
	srcTell
	srcSeek
	srcSupports
)

// sourceStat carries the optional metadata a source can report.
type sourceStat struct {
	modTime    int64 // unix seconds, valid when hasModTime
	hasModTime bool
	size       int64
	hasSize    bool
}

// sourceBridge adapts a mapio.SourceReadProvider onto the source protocol.
// It holds the backend error slot and a retain count that keeps the bridge
// alive across backend callbacks; the count must return to zero before the
// bridge is discarded. The bridge may be invoked reentrantly during a single
// logical operation and must tolerate that.
type sourceBridge struct {
	provider mapio.SourceReadProvider
	lastErr  error
	retained int
}

func newSourceBridge(provider mapio.SourceReadProvider) *sourceBridge {
	return &sourceBridge{provider: provider}
}

// supports reports the exact command set the bridge implements.
func (b *sourceBridge) supports(op sourceOp) bool {
	switch op {
	case srcOpen, srcRead, srcClose, srcStat, srcError, srcFree, srcTell, srcSeek, srcSupports:
		return true
	default:
		return false
	}
}

// open positions the source at offset 0.
func (b *sourceBridge) open() error {
	if err := b.provider.Seek(0); err != nil {
		b.lastErr = err
		return err
	}
	return nil
}

// read delegates to the provider, rejecting lengths outside the signed
// 64-bit range.
func (b *sourceBridge) read(p []byte, length uint64) (int, error) {
	if length > math.MaxInt64 {
		b.lastErr = fmt.Errorf("read length %d: %w", length, mapio.ErrSeekOverflow)
		return 0, b.lastErr
	}
	if uint64(len(p)) > length {
		p = p[:length]
	}
	n, err := b.provider.ReadBytes(p)
	if err != nil {
		b.lastErr = err
		return n, err
	}
	return n, nil
}

// stat populates modification time and size only if the provider supplies
// them.
func (b *sourceBridge) stat() sourceStat {
	var st sourceStat
	if modTime, ok := b.provider.ModTime(); ok {
		st.modTime = modTime.Unix()
		st.hasModTime = true
	}
	if size, ok := b.provider.FileSize(); ok {
		st.size = size
		st.hasSize = true
	}
	return st
}

// tell returns the provider's current offset, translating failure into the
// cancel error.
func (b *sourceBridge) tell() (int64, error) {
	off, err := b.provider.Tell()
	if err != nil {
		b.lastErr = fmt.Errorf("%w: %w", mapio.ErrSeekCancelled, err)
		return 0, b.lastErr
	}
	if off < 0 {
		b.lastErr = mapio.ErrSeekOverflow
		return 0, b.lastErr
	}
	return off, nil
}

// seek computes the new absolute offset from the current position and the
// source size, then delegates to the provider's seek.
func (b *sourceBridge) seek(offset int64, whence int) error {
	current, err := b.tell()
	if err != nil {
		return err
	}
	var size int64
	if s, ok := b.provider.FileSize(); ok {
		size = s
	}
	newOffset, err := computeSeekOffset(current, size, offset, whence)
	if err != nil {
		b.lastErr = err
		return err
	}
	if err := b.provider.Seek(newOffset); err != nil {
		b.lastErr = err
		return err
	}
	return nil
}

// free decrements the retain count.
func (b *sourceBridge) free() {
	if b.retained > 0 {
		b.retained--
	}
}

// keep increments the retain count.
func (b *sourceBridge) keep() {
	b.retained++
}

// err surfaces the provider's last backend error.
func (b *sourceBridge) err() error {
	return b.lastErr
}

// sourceRequest carries one protocol operation together with its operands.
// Ops without operands leave the extra fields zero.
type sourceRequest struct {
	op     sourceOp
	buf    []byte
	length uint64
	offset int64
	whence int
}

// sourceResponse carries the outputs of data-carrying operations.
type sourceResponse struct {
	n      int
	stat   sourceStat
	offset int64
}

// dispatch executes one protocol operation. Every operation advertised by
// supports is handled here; only unrecognized operations fail with
// ErrUnsupported.
func (b *sourceBridge) dispatch(req sourceRequest) (sourceResponse, error) {
	switch req.op {
	case srcOpen:
		return sourceResponse{}, b.open()
	case srcRead:
		n, err := b.read(req.buf, req.length)
		return sourceResponse{n: n}, err
	case srcClose:
		return sourceResponse{}, nil
	case srcStat:
		return sourceResponse{stat: b.stat()}, nil
	case srcError:
		return sourceResponse{}, b.err()
	case srcFree:
		b.free()
		return sourceResponse{}, nil
	case srcTell:
		off, err := b.tell()
		return sourceResponse{offset: off}, err
	case srcSeek:
		return sourceResponse{}, b.seek(req.offset, req.whence)
	case srcSupports:
		return sourceResponse{}, nil
	default:
		b.lastErr = mapio.ErrUnsupported
		return sourceResponse{}, mapio.ErrUnsupported
	}
}

// computeSeekOffset is the backend's offset-arithmetic helper: it resolves a
// relative seek against the current offset and total size, rejecting results
// outside [0, MaxInt64].
func computeSeekOffset(current, size, offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = current
	case io.SeekEnd:
		base = size
	default:
		return 0, mapio.ErrUnsupported
	}
	if offset > 0 && base > math.MaxInt64-offset {
		return 0, mapio.ErrSeekOverflow
	}
	newOffset := base + offset
	if newOffset < 0 {
		return 0, mapio.ErrSeekOverflow
	}
	return newOffset, nil
}

// sourceReaderAt drives the bridge so the archive backend can random-access
// the caller's source. Reads are sequential under a single logical owner.
type sourceReaderAt struct {
	bridge *sourceBridge
	size   int64
}

// ReadAt implements io.ReaderAt over the seek/read protocol.
func (r *sourceReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, mapio.ErrSeekOverflow
	}
	if _, err := r.bridge.dispatch(sourceRequest{op: srcSeek, offset: off, whence: io.SeekStart}); err != nil {
		return 0, err
	}
	n := 0
	for n < len(p) {
		resp, err := r.bridge.dispatch(sourceRequest{op: srcRead, buf: p[n:], length: uint64(len(p) - n)})
		if err != nil {
			return n, err
		}
		if resp.n == 0 {
			return n, io.EOF
		}
		n += resp.n
	}
	return n, nil
}

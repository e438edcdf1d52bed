package zipio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cleptomanis/warzone2100/mapio"
)

func TestOpenForWritingRejectsEmptyName(t *testing.T) {
	a := newWrappedArchive(nil, false)
	assert.Nil(t, openForWriting("", a, false))
	assert.Nil(t, openForWriting("x.txt", nil, false))
}

func TestStreamModeMismatch(t *testing.T) {
	a := newWrappedArchive(nil, false)
	w := openForWriting("x.txt", a, false)
	require.NotNil(t, w)

	_, err := w.ReadBytes(make([]byte, 4))
	assert.ErrorIs(t, err, mapio.ErrUnsupported)
	assert.False(t, w.EndOfStream(), "write streams never report end of stream")
	require.NoError(t, w.Close())

	a.addEntry("y.txt", []byte("abc"), false)
	e, ok := a.locate("y.txt")
	require.True(t, ok)
	r := openForReading(e, a)
	require.NotNil(t, r)
	defer r.Close()

	_, err = r.WriteBytes([]byte("nope"))
	assert.ErrorIs(t, err, mapio.ErrUnsupported)
}

func TestStreamWriteAfterClose(t *testing.T) {
	a := newWrappedArchive(nil, false)
	w := openForWriting("x.txt", a, false)
	require.NotNil(t, w)
	require.NoError(t, w.Close())

	_, err := w.WriteBytes([]byte("late"))
	assert.ErrorIs(t, err, mapio.ErrClosed)
}

func TestStreamWriteGrowth(t *testing.T) {
	a := newWrappedArchive(nil, false)
	w := openForWriting("grow.bin", a, false)
	require.NotNil(t, w)

	// Many small writes exercise the amortized growth path; one large
	// write exercises the request-dominated path.
	var want []byte
	chunk := []byte("0123456789abcdef")
	for i := 0; i < 200; i++ {
		n, err := w.WriteBytes(chunk)
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
		want = append(want, chunk...)
	}
	big := make([]byte, 8192)
	for i := range big {
		big[i] = byte(i)
	}
	n, err := w.WriteBytes(big)
	require.NoError(t, err)
	require.Equal(t, len(big), n)
	want = append(want, big...)

	require.NoError(t, w.Close())
	e, ok := a.locate("grow.bin")
	require.True(t, ok)
	assert.Equal(t, want, e.pending)
}

func TestStreamWriteEmptyDiscarded(t *testing.T) {
	a := newWrappedArchive(nil, false)
	w := openForWriting("nothing.txt", a, false)
	require.NotNil(t, w)
	require.NoError(t, w.Close())

	_, ok := a.locate("nothing.txt")
	assert.False(t, ok, "zero-byte stream must not register an entry")
}

func TestStreamReadLookahead(t *testing.T) {
	a := newWrappedArchive(nil, true)
	a.addEntry("seq.bin", []byte{10, 20, 30}, false)
	e, ok := a.locate("seq.bin")
	require.True(t, ok)

	s := openForReading(e, a)
	require.NotNil(t, s)
	defer s.Close()

	require.False(t, s.EndOfStream())
	// The whole content including the probe byte comes back in order.
	buf := make([]byte, 3)
	n, err := s.ReadBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{10, 20, 30}, buf)
	assert.True(t, s.EndOfStream())

	// Reading past the end is a zero-length short read, not an error.
	n, err = s.ReadBytes(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStreamHoldsArchiveShare(t *testing.T) {
	a := newWrappedArchive(nil, false)
	committed := false
	a.commit = func([]byte) { committed = true }

	w := openForWriting("held.txt", a, false)
	require.NotNil(t, w)

	a.release() // the creator's share
	assert.False(t, committed)

	_, err := w.WriteBytes([]byte("still alive"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.True(t, committed)
}

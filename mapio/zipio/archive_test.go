package zipio

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readerOver(t *testing.T, image []byte) *zip.Reader {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(image), int64(len(image)))
	require.NoError(t, err)
	return zr
}

func TestSerializePreservesOriginalEntries(t *testing.T) {
	image := buildZip(t, []testEntry{
		{name: "original.txt", content: "kept as-is", unixOrigin: true},
	})
	a := newWrappedArchive(readerOver(t, image), false)
	a.addEntry("added.txt", []byte("fresh"), false)

	out, err := a.serialize()
	require.NoError(t, err)

	zr := readerOver(t, out)
	require.Len(t, zr.File, 2)

	byName := make(map[string]*zip.File)
	for _, f := range zr.File {
		byName[f.Name] = f
	}
	for name, want := range map[string]string{
		"original.txt": "kept as-is",
		"added.txt":    "fresh",
	} {
		f, ok := byName[name]
		require.True(t, ok, "entry %q missing after serialize", name)
		rc, err := f.Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, want, string(got))
	}
}

func TestAddEntryOverwritesInPlace(t *testing.T) {
	a := newWrappedArchive(nil, false)
	a.addEntry("x.txt", []byte("one"), false)
	a.addEntry("y.txt", []byte("side"), false)
	a.addEntry("x.txt", []byte("two"), false)

	assert.Equal(t, []string{"x.txt", "y.txt"}, a.names, "overwrite must not duplicate the name")
	e, ok := a.locate("x.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("two"), e.pending)
	assert.True(t, a.mutated)
}

func TestAddEntryInvalidatesDirectoryCache(t *testing.T) {
	a := newWrappedArchive(nil, false)
	a.addEntry("a/one.txt", []byte("1"), false)
	assert.Equal(t, []string{"a/"}, a.directoryList())

	a.addEntry("a/b/two.txt", []byte("2"), false)
	assert.Equal(t, []string{"a/", "a/b/"}, a.directoryList())
}

func TestDirectoryListSkipsUnsafeNames(t *testing.T) {
	a := newWrappedArchive(nil, false)
	a.addEntry("../evil/file.txt", []byte("x"), false)
	a.addEntry("safe/file.txt", []byte("y"), false)

	assert.Equal(t, []string{"safe/"}, a.directoryList())
}

func TestDetermineMalformedSeparators(t *testing.T) {
	tests := []struct {
		name    string
		entries []testEntry
		want    bool
	}{
		{
			name:    "empty archive",
			entries: nil,
			want:    false,
		},
		{
			name: "dos origin with backslash",
			entries: []testEntry{
				{name: `dir\file.txt`, content: "x"},
			},
			want: true,
		},
		{
			name: "dos origin with forward slash settles first",
			entries: []testEntry{
				{name: "dir/file.txt", content: "x"},
				{name: `other\late.txt`, content: "y"},
			},
			want: false,
		},
		{
			name: "non-dos origin settles immediately",
			entries: []testEntry{
				{name: `dir\file.txt`, content: "x", unixOrigin: true},
			},
			want: false,
		},
		{
			name: "flat dos names decide nothing",
			entries: []testEntry{
				{name: "flat.txt", content: "x"},
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a *wrappedArchive
			if tt.entries == nil {
				a = newWrappedArchive(nil, true)
			} else {
				a = newWrappedArchive(readerOver(t, buildZip(t, tt.entries)), true)
			}
			assert.Equal(t, tt.want, a.determineMalformedSeparators())
		})
	}
}

func TestQuirkMemoized(t *testing.T) {
	image := buildZip(t, []testEntry{
		{name: `dir\file.txt`, content: "x"},
	})
	a := newWrappedArchive(readerOver(t, image), false)

	require.True(t, a.malformedSeparatorWorkaround())

	// A later addition that would change the classification must not: the
	// cell is permanent once computed.
	a.addEntry("clean/name.txt", []byte("y"), false)
	assert.True(t, a.malformedSeparatorWorkaround())
}

func TestReleaseClosesOnce(t *testing.T) {
	commits := 0
	a := newWrappedArchive(nil, false)
	a.commit = func([]byte) { commits++ }

	a.retain()
	a.release()
	assert.Equal(t, 0, commits, "closed with a share still held")
	a.release()
	assert.Equal(t, 1, commits)
	a.release() // extra release after close stays a no-op
	assert.Equal(t, 1, commits)
}

func TestCloseEmptyCommitsNil(t *testing.T) {
	var got []byte
	called := false
	a := newWrappedArchive(nil, false)
	a.commit = func(data []byte) {
		called = true
		got = data
	}
	a.release()
	assert.True(t, called)
	assert.Nil(t, got)
}

func TestPostCloseRunsAfterCommit(t *testing.T) {
	var order []string
	a := newWrappedArchive(nil, false)
	a.addEntry("f.txt", []byte("x"), false)
	a.commit = func([]byte) { order = append(order, "commit") }
	a.postClose = func() { order = append(order, "postClose") }
	a.release()
	assert.Equal(t, []string{"commit", "postClose"}, order)
}

package zipio

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Cleptomanis/warzone2100/mapio/zipio/internal/zippath"
)

// fixedLastModTime is the legacy DOS timestamp stamped on entries when the
// deterministic-output policy is enabled: Jan 1, 1980 + 12 hours and 1 minute,
// to avoid time zone weirdness (matching "strip-nondeterminism" tooling).
var fixedLastModTime = time.Date(1980, time.January, 1, 12, 1, 0, 0, time.UTC)

// entry is one named object in the archive's flat namespace: either an
// original entry backed by the decoded central directory, or an uncommitted
// in-memory addition awaiting serialization.
type entry struct {
	file         *zip.File // nil for uncommitted additions
	pending      []byte    // non-nil for uncommitted additions
	fixedLastMod bool
}

func (e *entry) size() uint64 {
	if e.pending != nil {
		return uint64(len(e.pending))
	}
	return e.file.UncompressedSize64
}

func (e *entry) method() uint16 {
	if e.pending != nil {
		return zip.Store
	}
	return e.file.Method
}

// dosOrigin reports whether the entry was produced by a DOS-platform tool,
// per the "version made by" field of the central directory record.
func (e *entry) dosOrigin() bool {
	if e.file == nil {
		return false
	}
	return e.file.CreatorVersion>>8 == 0
}

// open returns a reader over the entry's uncompressed content.
func (e *entry) open() (io.ReadCloser, error) {
	if e.pending != nil {
		return io.NopCloser(bytes.NewReader(e.pending)), nil
	}
	return e.file.Open()
}

// wrappedArchive owns one opened archive: the flat entry namespace, the
// read-only flag captured at open time, the commit sink and the post-close
// callback. Ownership is shared between the facade and in-flight streams
// through an atomic reference count; the last release closes exactly once.
type wrappedArchive struct {
	refs   atomic.Int32
	closed atomic.Bool

	readOnly bool
	names    []string          // stored names in index order (additions appended)
	entries  map[string]*entry // keyed by raw stored name
	mutated  bool

	// commit receives the serialized archive bytes on a writable close
	// (nil when the archive ended up empty or serialization failed).
	commit func(data []byte)
	// postClose runs after the close decision, regardless of outcome.
	postClose func()

	// Derived, invalidate-on-write view of all ancestor directories
	// implied by entry names. Never authoritative.
	cachedDirs []string

	// Lazy cell for the malformed-separator classification. Computed at
	// most once per archive; permanent for the archive's lifetime.
	quirkKnown bool
	quirkValue bool
}

// newWrappedArchive builds the entry table from the decoded reader (nil for
// a freshly created archive). Duplicate stored names keep the first
// occurrence, matching name-locate semantics.
func newWrappedArchive(zr *zip.Reader, readOnly bool) *wrappedArchive {
	a := &wrappedArchive{
		readOnly: readOnly,
		entries:  make(map[string]*entry),
	}
	if zr != nil {
		for _, f := range zr.File {
			if _, ok := a.entries[f.Name]; ok {
				continue
			}
			a.entries[f.Name] = &entry{file: f}
			a.names = append(a.names, f.Name)
		}
	}
	a.refs.Store(1)
	return a
}

func (a *wrappedArchive) retain() {
	a.refs.Add(1)
}

// release drops one ownership share; the final release closes the archive.
func (a *wrappedArchive) release() {
	if a.refs.Add(-1) > 0 {
		return
	}
	a.close()
}

// close runs at most once. Read-only archives discard any uncommitted
// additions; writable archives serialize the surviving entry set and hand
// the bytes to the commit sink. Failure is best-effort and not surfaced.
func (a *wrappedArchive) close() {
	if !a.closed.CompareAndSwap(false, true) {
		return
	}
	if !a.readOnly && a.commit != nil {
		if len(a.names) == 0 {
			a.commit(nil)
		} else if data, err := a.serialize(); err == nil {
			a.commit(data)
		} else {
			a.commit(nil)
		}
	}
	if a.postClose != nil {
		a.postClose()
		a.postClose = nil
	}
}

// serialize writes the current entry set to a new archive image. Original
// entries are copied raw (no recompression); uncommitted additions are
// deflated under their stored name with UTF-8 encoding.
func (a *wrappedArchive) serialize() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range a.names {
		e := a.entries[name]
		if e.pending == nil {
			if err := w.Copy(e.file); err != nil {
				w.Close()
				return nil, err
			}
			continue
		}
		hdr := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		}
		if e.fixedLastMod {
			hdr.Modified = fixedLastModTime
		}
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			w.Close()
			return nil, err
		}
		if _, err := fw.Write(e.pending); err != nil {
			w.Close()
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addEntry registers data as a named file with overwrite semantics. This is
// the single mutation point of the entry namespace, so the directory cache
// is invalidated here.
func (a *wrappedArchive) addEntry(name string, data []byte, fixedLastMod bool) {
	if e, ok := a.entries[name]; ok {
		e.file = nil
		e.pending = data
		e.fixedLastMod = fixedLastMod
	} else {
		a.entries[name] = &entry{pending: data, fixedLastMod: fixedLastMod}
		a.names = append(a.names, name)
	}
	a.mutated = true
	a.cachedDirs = nil
}

// locate finds the entry for a logical name. The literal name is tried
// first; if the archive exhibits the malformed-separator quirk, a second
// lookup with backslash separators is attempted.
func (a *wrappedArchive) locate(name string) (*entry, bool) {
	if e, ok := a.entries[name]; ok {
		return e, true
	}
	if a.malformedSeparatorWorkaround() {
		if e, ok := a.entries[zippath.ToBackslashes(name)]; ok {
			return e, true
		}
	}
	return nil, false
}

// enumName returns the entry's name in forward-slash form, applying the
// separator workaround only to DOS-origin entries of quirky archives.
func (a *wrappedArchive) enumName(raw string, e *entry) string {
	if a.malformedSeparatorWorkaround() && e.dosOrigin() && strings.ContainsRune(raw, '\\') {
		return zippath.ToForwardSlashes(raw)
	}
	return raw
}

// malformedSeparatorWorkaround reports whether the archive was produced by
// a tool that stored literal backslashes under a DOS platform-origin tag.
// The classification is computed once and memoized for the archive's
// lifetime.
func (a *wrappedArchive) malformedSeparatorWorkaround() bool {
	if !a.quirkKnown {
		a.quirkValue = a.determineMalformedSeparators()
		a.quirkKnown = true
	}
	return a.quirkValue
}

// determineMalformedSeparators scans entries in index order. The first
// DOS-origin entry whose name contains a backslash classifies the archive
// as quirky; one containing a forward slash, or any non-DOS-origin entry,
// settles it as well-formed.
func (a *wrappedArchive) determineMalformedSeparators() bool {
	for _, name := range a.names {
		e := a.entries[name]
		if e.file == nil {
			continue
		}
		if !e.dosOrigin() {
			return false
		}
		if strings.ContainsRune(name, '\\') {
			return true
		}
		if strings.ContainsRune(name, '/') {
			return false
		}
	}
	return false
}

// directoryList returns the sorted list of all synthesized directory paths
// (each ending in "/") implied by the entry namespace, building it on first
// use. Valid ZIP files may or may not contain dedicated directory entries,
// so every entry's ancestor directories are derived.
func (a *wrappedArchive) directoryList() []string {
	if a.cachedDirs != nil {
		return a.cachedDirs
	}
	seen := make(map[string]struct{})
	dirs := []string{}
	for _, raw := range a.names {
		e := a.entries[raw]
		name := a.enumName(raw, e)
		if zippath.IsUnsafe(name) {
			continue
		}
		for _, dir := range zippath.AncestorDirs(name) {
			if _, ok := seen[dir]; ok {
				continue
			}
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	a.cachedDirs = dirs
	return dirs
}

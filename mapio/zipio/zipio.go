// Package zipio implements the mapio.Provider contract over ZIP archives,
// so map-package content can be consumed from .wz/.zip files exactly like a
// directory tree.
//
// An Archive can be opened from a filesystem path, an in-memory byte
// buffer, or an arbitrary caller-supplied byte source, and a new archive
// can be created in memory (optionally written out to a path on close).
// Compression itself is delegated to archive/zip; only stored and deflated
// entries are accepted on read.
//
// Archives and their streams assume a single logical owner; the shared
// archive handle exists so in-flight streams keep the archive alive after
// the facade is closed, not to support concurrent mutation.
package zipio

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/Cleptomanis/warzone2100/mapio"
	"github.com/Cleptomanis/warzone2100/mapio/zipio/internal/zippath"
)

// DefaultEmbeddedFileMaxSize is the default cap applied to embedded files
// read out of an archive (100 MiB). LoadFullFile accepts a per-call
// override.
const DefaultEmbeddedFileMaxSize = 104857600

// Constructor failure modes.
var (
	// ErrConsistency indicates the archive failed the extra consistency
	// checks requested at open time.
	ErrConsistency = errors.New("archive consistency check failed")
)

// Option configures archive acquisition.
type Option func(*settings)

type settings struct {
	consistencyChecks bool
	readOnly          bool
	fixedLastMod      bool
	logger            mapio.LoggingProtocol
}

// WithConsistencyChecks enables extra validation of the archive's central
// directory at open time (rejects duplicate entry names).
func WithConsistencyChecks() Option {
	return func(s *settings) { s.consistencyChecks = true }
}

// WithReadOnly forces a path-opened archive to discard all changes at close.
// Memory- and source-opened archives are always read-only.
func WithReadOnly() Option {
	return func(s *settings) { s.readOnly = true }
}

// WithFixedLastMod stamps written entries with a fixed legacy DOS timestamp
// instead of the current time, for reproducible archive output.
func WithFixedLastMod() Option {
	return func(s *settings) { s.fixedLastMod = true }
}

// WithLogger supplies a log sink for backend diagnostics. Only the
// custom-source open path logs (on backend-open failure).
func WithLogger(logger mapio.LoggingProtocol) Option {
	return func(s *settings) { s.logger = logger }
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Archive implements mapio.Provider over one ZIP archive.
//
// Close must be called when the archive is no longer needed; open streams
// hold their own share of the underlying handle, and the real close (commit
// or discard) happens when the last share is released.
type Archive struct {
	zip          *wrappedArchive
	fixedLastMod bool
	released     bool
}

// Compile-time interface check.
var _ mapio.Provider = (*Archive)(nil)

// OpenFile opens a ZIP archive at a filesystem path. Unless WithReadOnly is
// given, entries written through the provider are committed back to the
// same path when the archive closes.
func OpenFile(path string, opts ...Option) (*Archive, error) {
	if path == "" {
		return nil, fmt.Errorf("open archive: empty path")
	}
	s := applyOptions(opts)
	rc, err := zip.OpenReader(path)
	// Archives with backslash or non-local entry names must still open;
	// such entries are excluded from lookup and enumeration instead.
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("open archive %q: %w", path, err)
	}
	if s.consistencyChecks {
		if err := checkConsistency(&rc.Reader); err != nil {
			rc.Close()
			return nil, fmt.Errorf("open archive %q: %w", path, err)
		}
	}

	a := newWrappedArchive(&rc.Reader, s.readOnly)
	if s.readOnly {
		a.postClose = func() { rc.Close() }
	} else {
		writeOut := path
		a.commit = func(data []byte) {
			// Raw entry copies read from the source file, so the
			// reader stays open through serialization and is
			// released before the path is rewritten.
			rc.Close()
			if data == nil || !a.mutated {
				return
			}
			writeFullFileToPath(writeOut, data)
		}
	}
	return &Archive{zip: a, fixedLastMod: s.fixedLastMod}, nil
}

// OpenMemory opens a ZIP archive held in a byte buffer, read-only. The
// buffer is captured and must not be mutated until the archive has closed.
func OpenMemory(contents []byte, opts ...Option) (*Archive, error) {
	if contents == nil {
		return nil, fmt.Errorf("open archive: nil buffer")
	}
	s := applyOptions(opts)
	zr, err := zip.NewReader(bytes.NewReader(contents), int64(len(contents)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("open archive from memory: %w", err)
	}
	if s.consistencyChecks {
		if err := checkConsistency(zr); err != nil {
			return nil, fmt.Errorf("open archive from memory: %w", err)
		}
	}

	a := newWrappedArchive(zr, true)
	a.postClose = func() {
		// The capture keeps the buffer reachable until the archive no
		// longer needs the source.
		runtime.KeepAlive(contents)
	}
	return &Archive{zip: a}, nil
}

// OpenSource opens a ZIP archive through a caller-supplied read provider,
// read-only. The bridge object and the backend source are retained until
// the archive closes. A logger given via WithLogger receives the backend
// error string if the open fails.
func OpenSource(provider mapio.SourceReadProvider, opts ...Option) (*Archive, error) {
	if provider == nil {
		return nil, fmt.Errorf("open archive: nil source provider")
	}
	s := applyOptions(opts)

	bridge := newSourceBridge(provider)
	if _, err := bridge.dispatch(sourceRequest{op: srcOpen}); err != nil {
		logOpenFailure(s.logger, err)
		return nil, fmt.Errorf("open archive from source: %w", err)
	}
	resp, _ := bridge.dispatch(sourceRequest{op: srcStat})
	st := resp.stat
	if !st.hasSize {
		logOpenFailure(s.logger, mapio.ErrSizeUnknown)
		return nil, fmt.Errorf("open archive from source: %w", mapio.ErrSizeUnknown)
	}

	zr, err := zip.NewReader(&sourceReaderAt{bridge: bridge, size: st.size}, st.size)
	if err != nil && errors.Is(err, zip.ErrInsecurePath) {
		err = nil
	}
	if err != nil {
		if backendErr := bridge.err(); backendErr != nil {
			err = backendErr
		}
		logOpenFailure(s.logger, err)
		bridge.dispatch(sourceRequest{op: srcFree})
		return nil, fmt.Errorf("open archive from source: %w", err)
	}
	if s.consistencyChecks {
		if err := checkConsistency(zr); err != nil {
			logOpenFailure(s.logger, err)
			bridge.dispatch(sourceRequest{op: srcFree})
			return nil, fmt.Errorf("open archive from source: %w", err)
		}
	}
	bridge.keep()

	a := newWrappedArchive(zr, true)
	a.postClose = func() {
		// The bridge must stick around until the backend source is
		// released.
		bridge.dispatch(sourceRequest{op: srcFree})
	}
	return &Archive{zip: a}, nil
}

// CreateMemory creates a new, empty in-memory archive for writing. The
// returned channel delivers the committed archive image exactly once at
// final close (nil when nothing was written or serialization failed) and
// is then closed. The channel is buffered, so the final close never blocks
// on a receiver.
func CreateMemory(opts ...Option) (*Archive, <-chan []byte, error) {
	s := applyOptions(opts)

	done := make(chan []byte, 1)
	a := newWrappedArchive(nil, false)
	a.commit = func(data []byte) {
		done <- data
		close(done)
	}
	return &Archive{zip: a, fixedLastMod: s.fixedLastMod}, done, nil
}

// CreateFile creates a new archive that is written to a filesystem path at
// final close. An archive that ended up empty writes nothing. The write-out
// happens synchronously as part of the final close.
func CreateFile(path string, opts ...Option) (*Archive, error) {
	if path == "" {
		return nil, fmt.Errorf("create archive: empty path")
	}
	s := applyOptions(opts)

	writeOut := path
	a := newWrappedArchive(nil, false)
	a.commit = func(data []byte) {
		if data == nil {
			return
		}
		writeFullFileToPath(writeOut, data)
	}
	return &Archive{zip: a, fixedLastMod: s.fixedLastMod}, nil
}

// Close releases the facade's share of the archive handle. The underlying
// archive closes (commit or discard, then the post-close callback) when the
// last open stream has also closed. Close is idempotent.
func (a *Archive) Close() error {
	if a.released {
		return nil
	}
	a.released = true
	a.zip.release()
	return nil
}

// zipSanityCheckResult classifies an entry against the pre-read checks.
type zipSanityCheckResult int

const (
	sanityPassed zipSanityCheckResult = iota
	sanityExceedsMaxFileSize
	sanityUnsupportedCompMethod
)

// sanityCheckEntry rejects oversized entries and entries using a
// compression method outside the allowlist (stored, deflated). The subset
// keeps archive support consistent across all target platforms.
func sanityCheckEntry(e *entry, fileSizeLimit uint64) zipSanityCheckResult {
	if e.size() > fileSizeLimit {
		return sanityExceedsMaxFileSize
	}
	if method := e.method(); method != zip.Store && method != zip.Deflate {
		return sanityUnsupportedCompMethod
	}
	return sanityPassed
}

// OpenBinaryStream opens one archive entry as a binary stream. Read mode
// locates the entry (tolerating the separator workaround) and applies the
// sanity checks; write mode succeeds unconditionally, with replacement
// happening at stream close.
func (a *Archive) OpenBinaryStream(name string, mode mapio.OpenMode) mapio.BinaryStream {
	switch mode {
	case mapio.ModeRead:
		e, ok := a.zip.locate(name)
		if !ok {
			return nil
		}
		if sanityCheckEntry(e, DefaultEmbeddedFileMaxSize) != sanityPassed {
			return nil
		}
		if s := openForReading(e, a.zip); s != nil {
			return s
		}
		return nil
	case mapio.ModeWrite:
		if s := openForWriting(name, a.zip, a.fixedLastMod); s != nil {
			return s
		}
		return nil
	default:
		return nil
	}
}

// LoadFullFile reads the entire named entry. A maxFileSize of zero applies
// DefaultEmbeddedFileMaxSize. When appendNull is set a trailing NUL is
// appended without being counted as content.
func (a *Archive) LoadFullFile(name string, maxFileSize uint32, appendNull bool) ([]byte, mapio.LoadFullFileResult) {
	e, ok := a.zip.locate(name)
	if !ok {
		return nil, mapio.LoadFailureOpen
	}
	limit := uint64(DefaultEmbeddedFileMaxSize)
	if maxFileSize != 0 {
		limit = uint64(maxFileSize)
	}
	switch sanityCheckEntry(e, limit) {
	case sanityPassed:
	case sanityExceedsMaxFileSize:
		return nil, mapio.LoadFailureExceedsMaxFileSize
	default:
		return nil, mapio.LoadFailureOpen
	}

	stream := openForReading(e, a.zip)
	if stream == nil {
		return nil, mapio.LoadFailureOpen
	}
	defer stream.Close()

	expected := int(e.size())
	data := make([]byte, expected, expected+1)
	n, err := stream.ReadBytes(data)
	if err != nil {
		return nil, mapio.LoadFailureRead
	}
	if n != expected {
		return nil, mapio.LoadFailureRead
	}
	if appendNull {
		data = append(data, 0)
	}
	return data, mapio.LoadSuccess
}

// WriteFullFile writes data as the complete contents of the named entry,
// replacing any previous contents at close.
func (a *Archive) WriteFullFile(name string, data []byte) bool {
	stream := openForWriting(name, a.zip, a.fixedLastMod)
	if stream == nil {
		return false
	}
	n, err := stream.WriteBytes(data)
	if err != nil || n != len(data) {
		stream.Close()
		return false
	}
	stream.Close()
	return true
}

// FileExists reports whether the named entry exists, transparently applying
// the separator workaround.
func (a *Archive) FileExists(name string) bool {
	_, ok := a.zip.locate(name)
	return ok
}

// MakeDirectory always succeeds: ZIP archives do not require dedicated
// directory entries for this provider's semantics.
func (a *Archive) MakeDirectory(string) bool {
	return true
}

// PathSeparator returns "/".
func (a *Archive) PathSeparator() string {
	return "/"
}

// EnumerateFiles enumerates the files directly beneath basePath.
func (a *Archive) EnumerateFiles(basePath string, fn mapio.EnumFunc) bool {
	return a.enumerateFilesInternal(basePath, false, fn)
}

// EnumerateFilesRecursive enumerates all files beneath basePath.
func (a *Archive) EnumerateFilesRecursive(basePath string, fn mapio.EnumFunc) bool {
	return a.enumerateFilesInternal(basePath, true, fn)
}

// EnumerateFolders enumerates the folders directly beneath basePath.
func (a *Archive) EnumerateFolders(basePath string, fn mapio.EnumFunc) bool {
	return a.enumerateFoldersInternal(basePath, false, fn)
}

// EnumerateFoldersRecursive enumerates all folders beneath basePath.
func (a *Archive) EnumerateFoldersRecursive(basePath string, fn mapio.EnumFunc) bool {
	return a.enumerateFoldersInternal(basePath, true, fn)
}

func (a *Archive) enumerateFilesInternal(basePath string, recurse bool, fn mapio.EnumFunc) bool {
	if fn == nil {
		return false
	}
	base := zippath.NormalizeBase(basePath)
	for _, raw := range a.zip.names {
		if raw == "" {
			continue
		}
		name := a.zip.enumName(raw, a.zip.entries[raw])
		if base != "" && !strings.HasPrefix(name, base) {
			continue
		}
		if zippath.IsUnsafe(name) {
			continue
		}
		// Entries ending in "/" are dedicated directory entries.
		if strings.HasSuffix(name, "/") {
			continue
		}
		if !recurse && strings.ContainsRune(name[len(base):], '/') {
			continue
		}
		if !fn(name[len(base):]) {
			break
		}
	}
	return true
}

func (a *Archive) enumerateFoldersInternal(basePath string, recurse bool, fn mapio.EnumFunc) bool {
	if fn == nil {
		return false
	}
	base := zippath.NormalizeBase(basePath)
	for _, dir := range a.zip.directoryList() {
		if base != "" && !strings.HasPrefix(dir, base) {
			continue
		}
		// Exclude the exact match of the base path itself.
		if len(dir) == len(base) {
			continue
		}
		if !recurse {
			// A directory is a direct child iff its remainder
			// contains no separator before the final position.
			rel := dir[len(base):]
			if idx := strings.IndexByte(rel, '/'); idx >= 0 && idx != len(rel)-1 {
				continue
			}
		}
		if !fn(dir[len(base):]) {
			break
		}
	}
	return true
}

// checkConsistency applies the extra open-time validation: every stored
// entry name must be unique within the archive.
func checkConsistency(zr *zip.Reader) error {
	seen := make(map[string]struct{}, len(zr.File))
	for _, f := range zr.File {
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: duplicate entry %q", ErrConsistency, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func logOpenFailure(logger mapio.LoggingProtocol, err error) {
	if logger == nil {
		return
	}
	logger.Log(mapio.LogError, err.Error())
}

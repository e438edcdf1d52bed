package mapio

import "time"

// OpenMode selects the mode of a BinaryStream. A stream is in exactly one
// mode for its lifetime.
type OpenMode int

const (
	// ModeRead opens a stream for reading an existing file.
	ModeRead OpenMode = iota
	// ModeWrite opens a stream for writing a new or replacement file.
	ModeWrite
)

// String returns a string representation of the OpenMode.
func (m OpenMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "unknown"
	}
}

// BinaryStream is a generic binary stream over one logical file.
//
// Implementations must guarantee that Close is idempotent: calling it more
// than once is safe and the redundant calls succeed.
type BinaryStream interface {
	// ReadBytes reads up to len(p) bytes into p and returns the number of
	// bytes read. A short read below len(p) is not itself an error; it
	// simply returns fewer bytes (zero at end of stream). A non-nil error
	// indicates a hard failure of the underlying storage.
	ReadBytes(p []byte) (int, error)

	// WriteBytes appends len(p) bytes to the stream and returns the number
	// of bytes written. It never partially fails: on success the count
	// equals len(p), otherwise an error is returned.
	WriteBytes(p []byte) (int, error)

	// Close releases the stream. For write streams this commits the
	// buffered bytes to the underlying storage exactly once.
	Close() error

	// EndOfStream reports whether the stream is exhausted. It may perform a
	// speculative one-byte read; a byte obtained that way is yielded by the
	// next ReadBytes call. Write streams always report false.
	EndOfStream() bool
}

// LoadFullFileResult is the result of a Provider.LoadFullFile call.
type LoadFullFileResult int

const (
	// LoadSuccess indicates the whole file was read.
	LoadSuccess LoadFullFileResult = iota
	// LoadFailureOpen indicates the file could not be located or opened.
	LoadFailureOpen
	// LoadFailureRead indicates the file was opened but could not be fully read.
	LoadFailureRead
	// LoadFailureExceedsMaxFileSize indicates the file's stated size exceeds
	// the configured maximum.
	LoadFailureExceedsMaxFileSize
)

// String returns a string representation of the LoadFullFileResult.
func (r LoadFullFileResult) String() string {
	switch r {
	case LoadSuccess:
		return "success"
	case LoadFailureOpen:
		return "open failure"
	case LoadFailureRead:
		return "read failure"
	case LoadFailureExceedsMaxFileSize:
		return "exceeds max file size"
	default:
		return "unknown"
	}
}

// EnumFunc receives one enumerated name (relative to the requested base
// path). Returning false stops the enumeration early.
type EnumFunc func(name string) bool

// Provider is the filesystem-provider contract consumed by map and campaign
// loading code.
//
// All failures are value-based: a nil stream, a false bool, or a
// LoadFullFileResult other than LoadSuccess. No operation is retried
// internally; callers treat any failure as terminal for that operation.
type Provider interface {
	// OpenBinaryStream opens the named file in the given mode. For reads
	// the file must exist and pass the provider's sanity checks; for
	// writes existence is irrelevant (replacement happens at Close).
	// Returns nil on failure.
	OpenBinaryStream(name string, mode OpenMode) BinaryStream

	// LoadFullFile reads the entire named file. maxFileSize of zero applies
	// the provider's default cap. When appendNull is true a trailing NUL is
	// appended to the returned data without being counted as content.
	LoadFullFile(name string, maxFileSize uint32, appendNull bool) ([]byte, LoadFullFileResult)

	// WriteFullFile writes data as the complete contents of the named file,
	// replacing any previous contents.
	WriteFullFile(name string, data []byte) bool

	// FileExists reports whether the named file exists.
	FileExists(name string) bool

	// MakeDirectory ensures the named directory exists.
	MakeDirectory(path string) bool

	// PathSeparator returns the provider's path separator.
	PathSeparator() string

	// EnumerateFiles enumerates the files directly beneath basePath.
	EnumerateFiles(basePath string, fn EnumFunc) bool

	// EnumerateFilesRecursive enumerates all files beneath basePath.
	EnumerateFilesRecursive(basePath string, fn EnumFunc) bool

	// EnumerateFolders enumerates the folders directly beneath basePath.
	// Enumerated names end in the path separator.
	EnumerateFolders(basePath string, fn EnumFunc) bool

	// EnumerateFoldersRecursive enumerates all folders beneath basePath.
	EnumerateFoldersRecursive(basePath string, fn EnumFunc) bool
}

// SourceReadProvider is a caller-supplied byte source used to open archives
// from arbitrary backing storage (remote objects, embedded resources, ...).
//
// Implementations are driven by a single logical owner and may be invoked
// reentrantly during one archive operation (for example a size query in the
// middle of an open); they must tolerate that without corrupting state.
type SourceReadProvider interface {
	// Seek positions the source at the absolute offset.
	Seek(offset int64) error

	// Tell returns the current absolute offset.
	Tell() (int64, error)

	// ReadBytes reads up to len(p) bytes at the current offset and returns
	// the number of bytes read. Zero with a nil error means end of source.
	ReadBytes(p []byte) (int, error)

	// ModTime returns the source's modification time, if known.
	ModTime() (time.Time, bool)

	// FileSize returns the source's total size in bytes, if known.
	FileSize() (int64, bool)
}

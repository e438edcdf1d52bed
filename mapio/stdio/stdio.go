// Package stdio implements the mapio.Provider contract over a conventional
// filesystem tree, backed by go-billy. It is the loose-files counterpart of
// the ZIP provider: content-loading code can consume either through the
// same interface.
package stdio

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/Cleptomanis/warzone2100/mapio"
)

// FS implements mapio.Provider over a billy.Filesystem.
type FS struct {
	bfs billy.Filesystem
}

// NewLocal creates a provider rooted at the given directory of the real
// filesystem.
func NewLocal(root string) *FS {
	return &FS{bfs: osfs.New(root)}
}

// NewMemory creates a provider over an initially empty in-memory
// filesystem.
func NewMemory() *FS {
	return &FS{bfs: memfs.New()}
}

// Unwrap returns the underlying billy.Filesystem.
func (p *FS) Unwrap() billy.Filesystem {
	return p.bfs
}

// normalize converts a logical name to forward-slash form without a leading
// separator.
func normalize(name string) string {
	name = filepath.ToSlash(name)
	return strings.TrimPrefix(name, "/")
}

// OpenBinaryStream opens the named file for reading or writing. Write mode
// creates missing parent directories and truncates any previous contents.
// Returns nil on failure.
func (p *FS) OpenBinaryStream(name string, mode mapio.OpenMode) mapio.BinaryStream {
	name = normalize(name)
	switch mode {
	case mapio.ModeRead:
		f, err := p.bfs.Open(name)
		if err != nil {
			return nil
		}
		return &fileStream{file: f, mode: mapio.ModeRead}
	case mapio.ModeWrite:
		if dir := filepath.Dir(name); dir != "." {
			if err := p.bfs.MkdirAll(dir, 0o755); err != nil {
				return nil
			}
		}
		f, err := p.bfs.Create(name)
		if err != nil {
			return nil
		}
		return &fileStream{file: f, mode: mapio.ModeWrite}
	default:
		return nil
	}
}

// LoadFullFile reads the entire named file. A non-zero maxFileSize caps the
// accepted file size; zero applies no cap (unlike the archive provider,
// plain files carry no default limit).
func (p *FS) LoadFullFile(name string, maxFileSize uint32, appendNull bool) ([]byte, mapio.LoadFullFileResult) {
	name = normalize(name)
	info, err := p.bfs.Stat(name)
	if err != nil {
		return nil, mapio.LoadFailureOpen
	}
	if maxFileSize != 0 && info.Size() > int64(maxFileSize) {
		return nil, mapio.LoadFailureExceedsMaxFileSize
	}

	f, err := p.bfs.Open(name)
	if err != nil {
		return nil, mapio.LoadFailureOpen
	}
	defer f.Close()

	expected := int(info.Size())
	data := make([]byte, expected, expected+1)
	total := 0
	for total < expected {
		n, err := f.Read(data[total:])
		total += n
		if err != nil {
			break
		}
	}
	if total != expected {
		return nil, mapio.LoadFailureRead
	}
	if appendNull {
		data = append(data, 0)
	}
	return data, mapio.LoadSuccess
}

// WriteFullFile writes data as the complete contents of the named file.
func (p *FS) WriteFullFile(name string, data []byte) bool {
	stream := p.OpenBinaryStream(name, mapio.ModeWrite)
	if stream == nil {
		return false
	}
	n, err := stream.WriteBytes(data)
	if err != nil || n != len(data) {
		stream.Close()
		return false
	}
	return stream.Close() == nil
}

// FileExists reports whether the named file or directory exists.
func (p *FS) FileExists(name string) bool {
	_, err := p.bfs.Stat(normalize(name))
	return err == nil
}

// MakeDirectory creates the named directory along with missing parents.
func (p *FS) MakeDirectory(path string) bool {
	return p.bfs.MkdirAll(normalize(path), 0o755) == nil
}

// PathSeparator returns "/".
func (p *FS) PathSeparator() string {
	return "/"
}

// EnumerateFiles enumerates the files directly beneath basePath.
func (p *FS) EnumerateFiles(basePath string, fn mapio.EnumFunc) bool {
	return p.enumerate(basePath, false, false, fn)
}

// EnumerateFilesRecursive enumerates all files beneath basePath.
func (p *FS) EnumerateFilesRecursive(basePath string, fn mapio.EnumFunc) bool {
	return p.enumerate(basePath, true, false, fn)
}

// EnumerateFolders enumerates the folders directly beneath basePath. Names
// end in the path separator.
func (p *FS) EnumerateFolders(basePath string, fn mapio.EnumFunc) bool {
	return p.enumerate(basePath, false, true, fn)
}

// EnumerateFoldersRecursive enumerates all folders beneath basePath.
func (p *FS) EnumerateFoldersRecursive(basePath string, fn mapio.EnumFunc) bool {
	return p.enumerate(basePath, true, true, fn)
}

// enumerate lists the requested kind of children of basePath in sorted
// order, recursing breadth-first when asked.
func (p *FS) enumerate(basePath string, recurse, folders bool, fn mapio.EnumFunc) bool {
	if fn == nil {
		return false
	}
	base := normalize(basePath)
	if base == "/" || base == "." {
		base = ""
	}
	base = strings.TrimSuffix(base, "/")

	names, ok := p.collect(base, "", recurse, folders)
	if !ok {
		return false
	}
	sort.Strings(names)
	for _, name := range names {
		if !fn(name) {
			break
		}
	}
	return true
}

func (p *FS) collect(dir, prefix string, recurse, folders bool) ([]string, bool) {
	read := dir
	if read == "" {
		read = "."
	}
	infos, err := p.bfs.ReadDir(read)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false
		}
		return nil, false
	}
	var names []string
	for _, info := range infos {
		rel := prefix + info.Name()
		child := info.Name()
		if dir != "" {
			child = dir + "/" + info.Name()
		}
		if info.IsDir() {
			if folders {
				names = append(names, rel+"/")
			}
			if recurse {
				sub, ok := p.collect(child, rel+"/", recurse, folders)
				if ok {
					names = append(names, sub...)
				}
			}
			continue
		}
		if !folders {
			names = append(names, rel)
		}
	}
	return names, true
}

// Compile-time interface check.
var _ mapio.Provider = (*FS)(nil)

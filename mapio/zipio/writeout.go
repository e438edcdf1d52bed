package zipio

import (
	"path/filepath"

	"github.com/Cleptomanis/warzone2100/mapio/stdio"
)

// writeFullFileToPath materializes a finished archive image at a real
// filesystem path, through the plain-filesystem provider.
func writeFullFileToPath(path string, data []byte) bool {
	dir := filepath.Dir(path)
	return stdio.NewLocal(dir).WriteFullFile(filepath.Base(path), data)
}

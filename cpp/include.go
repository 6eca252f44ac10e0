package cpp

import (
	"os"
	"path/filepath"
)

// OSFileReader is the standard FileReader: it resolves a path first
// relative to the current working directory (for quoted includes,
// Preprocessor has already prefixed path with the includer's cwd), and
// failing that against each of Dirs in order (for angle includes, or a
// quoted include that isn't found alongside its includer).
type OSFileReader struct {
	Dirs []string
}

// NewOSFileReader builds an OSFileReader that also searches dirs, in
// the order given, after the literal path fails to open.
func NewOSFileReader(dirs ...string) *OSFileReader {
	return &OSFileReader{Dirs: dirs}
}

func (r *OSFileReader) ReadFile(path string) (string, bool) {
	if data, err := os.ReadFile(path); err == nil {
		return string(data), true
	}
	for _, dir := range r.Dirs {
		candidate := filepath.Join(dir, path)
		if data, err := os.ReadFile(candidate); err == nil {
			return string(data), true
		}
	}
	return "", false
}

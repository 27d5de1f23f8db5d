package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// writeIfAbsent creates path with data unless it already exists. A failed
// write removes the partial file. It reports whether the file was created.
func writeIfAbsent(fs afero.Fs, path string, data []byte) (bool, error) {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", path, err)
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = fs.Remove(path)
		return false, fmt.Errorf("write %s: %w", path, werr)
	}
	return true, nil
}

// exists reports whether path exists. Stat errors other than not-exist are
// treated as existing so that nothing gets overwritten.
func exists(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return ok || err != nil
}

// existsWithStem reports whether any file named stem.<ext> exists.
func existsWithStem(fs afero.Fs, stem string) bool {
	entries, err := afero.ReadDir(fs, filepath.Dir(stem))
	if err != nil {
		return false
	}
	prefix := filepath.Base(stem) + "."
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			return true
		}
	}
	return false
}

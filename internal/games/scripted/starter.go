package scripted

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed scripts/*.lua
var starterFS embed.FS

// StarterNames returns the embedded starter script names, sorted.
func StarterNames() []string {
	entries, err := fs.ReadDir(starterFS, "scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".lua"))
	}
	sort.Strings(names)
	return names
}

// StarterSource returns the embedded source of a starter script.
func StarterSource(name string) (string, bool) {
	data, err := starterFS.ReadFile("scripts/" + name + ".lua")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// WriteStarter copies the starter scripts into dir, creating it if needed.
// Existing files are left alone. It returns the paths it wrote.
func WriteStarter(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scripted: cannot create %s: %w", dir, err)
	}

	var written []string
	for _, name := range StarterNames() {
		src, _ := StarterSource(name)
		path := filepath.Join(dir, name+".lua")

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("scripted: cannot create %s: %w", path, err)
		}
		_, werr := f.WriteString(src)
		cerr := f.Close()
		if werr != nil {
			return written, fmt.Errorf("scripted: cannot write %s: %w", path, werr)
		}
		if cerr != nil {
			return written, fmt.Errorf("scripted: cannot write %s: %w", path, cerr)
		}
		written = append(written, path)
	}
	return written, nil
}

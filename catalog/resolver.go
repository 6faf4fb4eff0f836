package catalog

import "path/filepath"

// Resolve returns the directories a catalog scan should cover.
//
// When explicit contains at least one entry that differs from defaultDir,
// explicit is returned unchanged. Otherwise the result is defaultDir followed
// by moduleDirs in registration order. Entries are not de-duplicated.
func Resolve(explicit []string, defaultDir string, moduleDirs []string) []string {
	if len(explicit) > 0 && !allSamePath(explicit, defaultDir) {
		return append([]string(nil), explicit...)
	}

	dirs := make([]string, 0, len(moduleDirs)+1)
	dirs = append(dirs, defaultDir)
	dirs = append(dirs, moduleDirs...)
	return dirs
}

func allSamePath(paths []string, dir string) bool {
	want := normalize(dir)
	for _, p := range paths {
		if normalize(p) != want {
			return false
		}
	}
	return true
}

func normalize(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

package ldcache

import (
	"path"
)

// Dir returns the directory cache entries for one launching identity are
// stored under. An app tied to its own data directory gets its own cache
// space there, so its entries are reclaimed along with the app; everything
// else shares the launcher's run directory.
func Dir(runDirPath, appDataDir string) string {
	if appDataDir != "" {
		return path.Join(appDataDir, ".ld.so")
	}
	return path.Join(runDirPath, "ld.so")
}

// activeName is the file name of the symlink that, for an app-tied cache
// directory, always points at the most recently regenerated entry.
const activeName = "active"

// Package extension locates and binds add-on runtime/application
// extensions (library bundles, locale packs, and similar) into a sandbox.
// Binds are emitted sorted by extension directory; ld.so.conf fragments,
// the summary and merge-dir symlinks follow the order the caller passes.
package extension

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"firelock.dev/launcher/helper/bwrap"
	"firelock.dev/launcher/internal/sys"
)

// Extension describes one installed runtime or application extension, as
// read from deploy metadata.
type Extension struct {
	FilesPath    string
	Directory    string
	SubdirSuffix string
	AddLdPath    string
	MergeDirs    []string
	NeedsTmpfs   bool
	InstalledID  string
	Commit       string
}

func prefixFor(app bool) (name, dir string) {
	if app {
		return "app", "/app"
	}
	return "usr", "/usr"
}

// Mount binds exts into c under the given prefix (app extensions land
// under /app, runtime extensions under /usr), emits ld.so.conf fragments or
// LD_LIBRARY_PATH entries for any add_ld_path extensions, and creates
// first-wins merge-dir symlinks. useLdSoCache selects which of those two
// library-search mechanisms applies, mirroring whether the sandbox is
// using an ld.so.cache overlay at all.
//
// It returns the ";"-joined "id=commit" summary used both in the instance
// info file and as a component of the ld cache key.
func Mount(os sys.State, c *bwrap.Config, exts []Extension, app, useLdSoCache bool) (summary string, err error) {
	_, prefixDir := prefixFor(app)

	sorted := make([]Extension, len(exts))
	copy(sorted, exts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Directory < sorted[j].Directory })

	tmpfsDone := make(map[string]bool, len(sorted))
	for _, e := range sorted {
		dir := path.Join(prefixDir, e.Directory)
		full := path.Join(dir, e.SubdirSuffix)

		if e.NeedsTmpfs {
			parent := path.Dir(dir)
			if !tmpfsDone[parent] {
				c.Tmpfs(parent, -1)
				tmpfsDone[parent] = true
			}
		}

		c.Bind(e.FilesPath, full)

		if _, statErr := os.Stat(path.Join(e.FilesPath, ".ref")); statErr == nil {
			c.LockFile = append(c.LockFile, path.Join(full, ".ref"))
		}
	}

	var ldLibraryPath strings.Builder
	ldSoConfCount := 0
	symlinked := make(map[string]bool)
	summaryParts := make([]string, 0, len(exts))
	prefixName, _ := prefixFor(app)

	for _, e := range exts {
		commit := e.Commit
		if commit == "" {
			commit = "local"
		}
		summaryParts = append(summaryParts, e.InstalledID+"="+commit)

		dir := path.Join(prefixDir, e.Directory)
		full := path.Join(dir, e.SubdirSuffix)

		if e.AddLdPath != "" {
			ldPath := path.Join(full, e.AddLdPath)
			if useLdSoCache {
				ldSoConfCount++
				fragPath := fmt.Sprintf("/run/flatpak/ld.so.conf.d/%s-%03d-%s.conf",
					prefixName, ldSoConfCount, e.InstalledID)
				c.AddData(fragPath, []byte(ldPath+"\n"))
			} else {
				if ldLibraryPath.Len() != 0 {
					ldLibraryPath.WriteByte(':')
				}
				ldLibraryPath.WriteString(ldPath)
			}
		}

		for _, md := range e.MergeDirs {
			parent := path.Dir(dir)
			mergeDir := path.Join(parent, md)
			sourceDir := path.Join(e.FilesPath, md)

			ents, rdErr := os.ReadDir(sourceDir)
			if rdErr != nil {
				continue
			}
			for _, ent := range ents {
				symlinkPath := path.Join(mergeDir, ent.Name())
				if symlinked[symlinkPath] {
					continue
				}
				symlinked[symlinkPath] = true
				c.Symlink(path.Join(dir, md, ent.Name()), symlinkPath)
			}
		}
	}

	if ldLibraryPath.Len() != 0 {
		if c.SetEnv == nil {
			c.SetEnv = make(map[string]string)
		}
		old := c.SetEnv["LD_LIBRARY_PATH"]
		final := ldLibraryPath.String()
		if old != "" {
			if app {
				final += ":" + old
			} else {
				final = old + ":" + final
			}
		}
		c.SetEnv["LD_LIBRARY_PATH"] = final
	}

	return strings.Join(summaryParts, ";"), nil
}

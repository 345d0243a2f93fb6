// Package ldcache regenerates and content-addresses the dynamic linker
// cache (/etc/ld.so.cache) a sandbox is given, so two launches sharing the
// same app commit, runtime commit, and enabled extensions reuse the same
// ldconfig output instead of re-running it on every launch.
package ldcache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key computes the content-addressed cache key ldconfig output is stored
// under: the hex SHA-256 of the concatenation, in this order, of the app
// commit (when there is one), the runtime commit, the app extensions
// summary, and the runtime extensions summary. appCommit, appExtSummary,
// and runtimeExtSummary may all be empty; runtimeCommit never is.
func Key(appCommit, runtimeCommit, appExtSummary, runtimeExtSummary string) string {
	h := sha256.New()
	if appCommit != "" {
		h.Write([]byte(appCommit))
	}
	h.Write([]byte(runtimeCommit))
	if appExtSummary != "" {
		h.Write([]byte(appExtSummary))
	}
	if runtimeExtSummary != "" {
		h.Write([]byte(runtimeExtSummary))
	}
	return hex.EncodeToString(h.Sum(nil))
}

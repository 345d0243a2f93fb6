package launch

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// docMountPath is where the document portal's per-app view is bound
// inside every sandbox, per spec §4.10 step 8.
func docMountPath(uid int) string { return fmt.Sprintf("/run/user/%d/doc", uid) }

// rewriteForwardedArgs implements the "@@"/"@@u" file-forwarding pass
// described in spec §4.10: between a pair of toggle tokens, any argument
// naming a local path or file:// URI that is not visible inside the
// sandbox is exported through the document portal and rewritten to its
// document-mount path ("@@") or an equivalent file:// URI ("@@u").
// Exporting is best-effort: a portal failure leaves the argument
// unchanged rather than failing the whole launch.
//
// Per spec §9's design notes, an argument that IS visible but reaches
// its target through a symlink chain crossing a boundary this plan
// never resolved is passed through unchanged even when that chain is
// not actually reachable in the sandbox. This is a known inherited
// inaccuracy in the visibility check, not something to silently fix
// here.
func (s *launchState) rewriteForwardedArgs(ctx context.Context, args []string) []string {
	out := make([]string, 0, len(args))
	inForward := false
	uriMode := false

	for _, a := range args {
		switch a {
		case "@@":
			inForward, uriMode = !inForward, false
			continue
		case "@@u":
			inForward, uriMode = !inForward, true
			continue
		}
		if !inForward {
			out = append(out, a)
			continue
		}
		out = append(out, s.forwardOne(ctx, a, uriMode))
	}
	return out
}

func (s *launchState) forwardOne(ctx context.Context, arg string, uriMode bool) string {
	localPath, ok := filePathOf(arg)
	if !ok {
		return arg
	}
	if s.plan.VisibilityQuery(localPath) {
		return arg
	}

	docID, err := exportDocument(ctx, localPath)
	if err != nil {
		s.l.Msg.Verbosef("launch: document portal export of %s: %v", localPath, err)
		return arg
	}

	rewritten := path.Join(docMountPath(s.uid), docID, path.Base(localPath))
	if uriMode {
		return "file://" + rewritten
	}
	return rewritten
}

// filePathOf reports the local filesystem path named by arg, if arg
// names one at all: either a bare absolute path, or a file:// URI.
func filePathOf(arg string) (string, bool) {
	if strings.HasPrefix(arg, "file://") {
		return strings.TrimPrefix(arg, "file://"), true
	}
	if path.IsAbs(arg) {
		return arg, true
	}
	return "", false
}

package blobs

import (
	"fmt"
)

// Passwd synthesizes the sandbox's entire /etc/passwd: one line for the
// invoking user, then a fixed nobody entry. Nothing else on the host
// system is meaningful inside the sandbox's own user namespace.
func Passwd(uid, gid int, username, home string) []byte {
	if username == "" {
		username = "user"
	}
	if home == "" {
		home = "/home/" + username
	}
	return []byte(fmt.Sprintf(
		"%s:x:%d:%d:%s:%s:/bin/sh\nnobody:x:65534:65534:nobody:/:/sbin/nologin\n",
		username, uid, gid, username, home,
	))
}

// Group synthesizes the sandbox's entire /etc/group: one line for the
// invoking user's primary group, then a fixed nobody group.
func Group(gid int, groupname string) []byte {
	if groupname == "" {
		groupname = "user"
	}
	return []byte(fmt.Sprintf("%s:x:%d:\nnobody:x:65534:\n", groupname, gid))
}

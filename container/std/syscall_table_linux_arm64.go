package std

import "golang.org/x/sys/unix"

// syscallNum maps syscall name to number for arm64. modify_ldt and uselib
// are omitted: arm64's generic syscall ABI never carried them, there is no
// number to resolve to, so SyscallResolveName correctly reports ok=false
// for both on this architecture.
var syscallNum = map[string]ScmpSyscall{
	"syslog":          ScmpSyscall(unix.SYS_SYSLOG),
	"acct":            ScmpSyscall(unix.SYS_ACCT),
	"quotactl":        ScmpSyscall(unix.SYS_QUOTACTL),
	"add_key":         ScmpSyscall(unix.SYS_ADD_KEY),
	"keyctl":          ScmpSyscall(unix.SYS_KEYCTL),
	"request_key":     ScmpSyscall(unix.SYS_REQUEST_KEY),
	"move_pages":      ScmpSyscall(unix.SYS_MOVE_PAGES),
	"mbind":           ScmpSyscall(unix.SYS_MBIND),
	"get_mempolicy":   ScmpSyscall(unix.SYS_GET_MEMPOLICY),
	"set_mempolicy":   ScmpSyscall(unix.SYS_SET_MEMPOLICY),
	"migrate_pages":   ScmpSyscall(unix.SYS_MIGRATE_PAGES),
	"unshare":         ScmpSyscall(unix.SYS_UNSHARE),
	"mount":           ScmpSyscall(unix.SYS_MOUNT),
	"pivot_root":      ScmpSyscall(unix.SYS_PIVOT_ROOT),
	"personality":     ScmpSyscall(unix.SYS_PERSONALITY),
	"clone":           ScmpSyscall(unix.SYS_CLONE),
	"ioctl":           ScmpSyscall(unix.SYS_IOCTL),
	"socket":          ScmpSyscall(unix.SYS_SOCKET),
	"ptrace":          ScmpSyscall(unix.SYS_PTRACE),
	"perf_event_open": ScmpSyscall(unix.SYS_PERF_EVENT_OPEN),
}

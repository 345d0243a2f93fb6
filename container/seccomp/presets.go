package seccomp

import (
	"golang.org/x/sys/unix"

	"firelock.dev/launcher/container/std"
)

// Process execution domains passed to personality(2), matching
// linux/personality.h.
const (
	PersonaLinux   std.ScmpDatum = 0x0000
	PersonaLinux32 std.ScmpDatum = 0x0008
)

// unconditionalDeny is denied outright, without inspecting any argument.
var unconditionalDeny = []string{
	// dmesg access and legacy syscalls with no legitimate use in a sandbox
	"syslog", "uselib", "acct",
	// disabling process accounting, reading quota state
	"quotactl",
	// kernel keyring access
	"add_key", "keyctl", "request_key",
	// NUMA and process memory introspection
	"move_pages", "mbind", "get_mempolicy", "set_mempolicy", "migrate_pages",
	// namespace and mount manipulation; bwrap already did all of this
	// before the sandboxed process ever runs
	"unshare", "mount", "pivot_root",
	// historic source of information leaks, also irrelevant outside
	// 32-bit compatibility mode
	"modify_ldt",
}

// denySocketFamilies have no legitimate use inside the sandbox: legacy,
// niche, or kernel-internal protocol families repeatedly implicated in
// namespace escape and privilege escalation bugs.
var denySocketFamilies = []std.ScmpDatum{
	std.ScmpDatum(unix.AF_AX25),
	std.ScmpDatum(unix.AF_IPX),
	std.ScmpDatum(unix.AF_APPLETALK),
	std.ScmpDatum(unix.AF_NETROM),
	std.ScmpDatum(unix.AF_BRIDGE),
	std.ScmpDatum(unix.AF_ATMPVC),
	std.ScmpDatum(unix.AF_X25),
	std.ScmpDatum(unix.AF_ROSE),
	std.ScmpDatum(unix.AF_DECnet),
	std.ScmpDatum(unix.AF_NETBEUI),
	std.ScmpDatum(unix.AF_SECURITY),
	std.ScmpDatum(unix.AF_KEY),
}

// Preset returns the native rule set enforced against a sandboxed process.
// allowedPersonality selects the single process execution domain permitted
// through personality(2); pass [PersonaLinux32] only alongside a granted
// multiarch capability. devel, when false, additionally denies
// perf_event_open and ptrace.
//
// Rules sharing a syscall number are returned consecutively, a precondition
// relied upon by [Compile]. Names absent from the running architecture's
// syscall table are silently omitted: there is no number to block.
func Preset(allowedPersonality std.ScmpDatum, devel bool) []std.NativeRule {
	rules := make([]std.NativeRule, 0, len(unconditionalDeny)+len(denySocketFamilies)+6)

	for _, name := range unconditionalDeny {
		nr, ok := std.SyscallResolveName(name)
		if !ok {
			continue
		}
		rules = append(rules, std.NativeRule{Syscall: nr, Errno: std.ScmpErrno(unix.EPERM)})
	}

	if !devel {
		// profiling and tracing are disabled unless the app explicitly
		// asked for developer access; perf in particular has a long CVE
		// history inside unprivileged namespaces
		for _, name := range []string{"perf_event_open", "ptrace"} {
			nr, ok := std.SyscallResolveName(name)
			if !ok {
				continue
			}
			rules = append(rules, std.NativeRule{Syscall: nr, Errno: std.ScmpErrno(unix.EPERM)})
		}
	}

	// personality: deny switching to any domain other than the one granted
	if nr, ok := std.SyscallResolveName("personality"); ok {
		rules = append(rules, std.NativeRule{
			Syscall: nr, Errno: std.ScmpErrno(unix.EPERM),
			Arg: &std.ScmpArgCmp{Arg: 0, Op: std.ScmpCmpNE, DatumA: allowedPersonality},
		})
	}

	// clone: deny creating a nested user namespace from inside the sandbox
	if nr, ok := std.SyscallResolveName("clone"); ok {
		rules = append(rules, std.NativeRule{
			Syscall: nr, Errno: std.ScmpErrno(unix.EPERM),
			Arg: &std.ScmpArgCmp{
				Arg: 0, Op: std.ScmpCmpMaskedEQ,
				DatumA: std.ScmpDatum(unix.CLONE_NEWUSER), DatumB: std.ScmpDatum(unix.CLONE_NEWUSER),
			},
		})
	}

	// ioctl: deny faking input to a controlling terminal (CVE-2017-5226)
	if nr, ok := std.SyscallResolveName("ioctl"); ok {
		rules = append(rules, std.NativeRule{
			Syscall: nr, Errno: std.ScmpErrno(unix.EPERM),
			Arg: &std.ScmpArgCmp{Arg: 1, Op: std.ScmpCmpEQ, DatumA: std.ScmpDatum(unix.TIOCSTI)},
		})
	}

	// socket: deny a fixed blacklist of address families plus anything
	// past the last known netlink-adjacent family
	if nr, ok := std.SyscallResolveName("socket"); ok {
		for _, fam := range denySocketFamilies {
			rules = append(rules, std.NativeRule{
				Syscall: nr, Errno: std.ScmpErrno(unix.EAFNOSUPPORT),
				Arg: &std.ScmpArgCmp{Arg: 0, Op: std.ScmpCmpEQ, DatumA: fam},
			})
		}
		rules = append(rules, std.NativeRule{
			Syscall: nr, Errno: std.ScmpErrno(unix.EAFNOSUPPORT),
			Arg: &std.ScmpArgCmp{Arg: 0, Op: std.ScmpCmpGE, DatumA: std.ScmpDatum(unix.AF_NETLINK + 1)},
		})
	}

	return rules
}

package std

import "iter"

// Syscalls returns an iterator over every syscall name wired for the
// current architecture.
func Syscalls() iter.Seq2[string, ScmpSyscall] {
	return func(yield func(string, ScmpSyscall) bool) {
		for name, num := range syscallNum {
			if !yield(name, num) {
				return
			}
		}
	}
}

// SyscallResolveName resolves a syscall number from its string
// representation. ok is false both for unrecognised names and for names
// that name a syscall absent on the current architecture (e.g.
// "modify_ldt" on arm64).
func SyscallResolveName(name string) (num ScmpSyscall, ok bool) {
	num, ok = syscallNum[name]
	return
}

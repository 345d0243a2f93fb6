package seccomp

// nativeArch is AUDIT_ARCH_X86_64, matched against struct seccomp_data's
// arch field before any syscall number is trusted.
const nativeArch uint32 = 0xc000003e

// NativeArch returns the audit architecture token for the architecture this
// binary was built for.
func NativeArch() uint32 { return nativeArch }

package seccomp

import (
	"encoding/binary"

	"golang.org/x/net/bpf"

	"firelock.dev/launcher/container/std"
)

// struct seccomp_data field offsets, valid for little-endian targets only
// (the only targets this module ships arch support for).
const (
	offNr   = 0
	offArch = 4
	offArgs = 16
)

func argOffset(i std.ScmpUint) uint32 { return offArgs + uint32(i)*8 }

// SECCOMP_RET_* action values, the high 16 bits of a filter's return value.
const (
	seccompRetAllow uint32 = 0x7fff0000
	seccompRetErrno uint32 = 0x00050000
)

func retErrno(e std.ScmpErrno) uint32 { return seccompRetErrno | (uint32(e) & 0x0000ffff) }

// Compile assembles rules into a classic BPF program: syscalls issued under
// an architecture other than arch are allowed unconditionally (this module
// does not carry the per-architecture syscall tables a multiarch filter
// would need); everything else falls through to allow unless a rule in
// rules says otherwise. Rules sharing a syscall number must be contiguous,
// the same grouping [Preset] already produces.
func Compile(arch uint32, rules []std.NativeRule) ([]byte, error) {
	insts := []bpf.Instruction{
		bpf.LoadAbsolute{Off: offArch, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: arch, SkipTrue: 1, SkipFalse: 0},
		bpf.RetConstant{Val: seccompRetAllow},
		bpf.LoadAbsolute{Off: offNr, Size: 4},
	}

	for _, g := range groupBySyscall(rules) {
		insts = append(insts, compileGroup(g)...)
	}

	insts = append(insts, bpf.RetConstant{Val: seccompRetAllow})

	raw, err := bpf.Assemble(insts)
	if err != nil {
		return nil, err
	}
	return encode(raw), nil
}

// groupBySyscall splits rules into runs sharing a syscall number, without
// reordering: non-contiguous runs for the same syscall stay separate,
// matching how the generated filter evaluates them in sequence.
func groupBySyscall(rules []std.NativeRule) [][]std.NativeRule {
	var groups [][]std.NativeRule
	for _, r := range rules {
		if n := len(groups); n > 0 && groups[n-1][0].Syscall == r.Syscall {
			groups[n-1] = append(groups[n-1], r)
			continue
		}
		groups = append(groups, []std.NativeRule{r})
	}
	return groups
}

// compileGroup emits the instructions guarding a single run of rules
// against one syscall number. On entry A holds the syscall number; every
// path out of the returned instructions either returns or leaves A holding
// the syscall number again, so the next group can compare against it
// without reloading.
func compileGroup(g []std.NativeRule) []bpf.Instruction {
	nr := uint32(g[0].Syscall)

	if g[0].Arg == nil {
		return []bpf.Instruction{
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: nr, SkipTrue: 0, SkipFalse: 1},
			bpf.RetConstant{Val: retErrno(g[0].Errno)},
		}
	}

	body := make([]bpf.Instruction, 0, len(g)*3+2)
	body = append(body, bpf.LoadAbsolute{Off: argOffset(g[0].Arg.Arg), Size: 4})
	for _, r := range g {
		body = append(body, argCheck(*r.Arg, r.Errno)...)
	}
	body = append(body, bpf.RetConstant{Val: seccompRetAllow})

	return append([]bpf.Instruction{
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: nr, SkipTrue: 0, SkipFalse: uint8(len(body))},
	}, body...)
}

// argCheck emits one comparison against the argument word A already holds,
// returning errno on a match and falling through to the next check
// otherwise. A masked-equal check mutates A in place; callers must not rely
// on A holding the unmasked argument afterwards within the same group.
func argCheck(cmp std.ScmpArgCmp, errno std.ScmpErrno) []bpf.Instruction {
	switch cmp.Op {
	case std.ScmpCmpMaskedEQ:
		return []bpf.Instruction{
			bpf.ALUOpConstant{Op: bpf.ALUOpAnd, Val: uint32(cmp.DatumA)},
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(cmp.DatumB), SkipTrue: 0, SkipFalse: 1},
			bpf.RetConstant{Val: retErrno(errno)},
		}
	case std.ScmpCmpNE:
		return []bpf.Instruction{
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(cmp.DatumA), SkipTrue: 1, SkipFalse: 0},
			bpf.RetConstant{Val: retErrno(errno)},
		}
	case std.ScmpCmpEQ:
		return []bpf.Instruction{
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(cmp.DatumA), SkipTrue: 0, SkipFalse: 1},
			bpf.RetConstant{Val: retErrno(errno)},
		}
	case std.ScmpCmpGE:
		return []bpf.Instruction{
			bpf.JumpIf{Cond: bpf.JumpGreaterOrEqual, Val: uint32(cmp.DatumA), SkipTrue: 0, SkipFalse: 1},
			bpf.RetConstant{Val: retErrno(errno)},
		}
	default:
		panic("seccomp: unsupported comparison operator")
	}
}

// encode serialises raw into the wire format the kernel expects for
// PR_SET_SECCOMP / SECCOMP_SET_MODE_FILTER / --seccomp: a packed array of
// 8-byte struct sock_filter entries.
func encode(raw []bpf.RawInstruction) []byte {
	buf := make([]byte, len(raw)*8)
	for i, ri := range raw {
		b := buf[i*8 : i*8+8]
		binary.LittleEndian.PutUint16(b[0:2], ri.Op)
		b[2] = ri.Jt
		b[3] = ri.Jf
		binary.LittleEndian.PutUint32(b[4:8], ri.K)
	}
	return buf
}

package seccomp

import (
	"encoding/binary"
	"testing"

	"firelock.dev/launcher/container/std"
)

func TestCompileProgramShape(t *testing.T) {
	prog, err := Compile(nativeArch, Preset(PersonaLinux, false))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(prog)%8 != 0 {
		t.Fatalf("program length %d is not a multiple of 8", len(prog))
	}
	if len(prog) < 8*4 {
		t.Fatalf("program too short: %d bytes", len(prog))
	}

	// first instruction always loads the arch word
	op := binary.LittleEndian.Uint16(prog[0:2])
	k := binary.LittleEndian.Uint32(prog[4:8])
	const bpfLdAbsW = 0x00 | 0x20 | 0x00 // BPF_LD | BPF_ABS | BPF_W
	if op != bpfLdAbsW || k != offArch {
		t.Fatalf("first instruction = {op:%#x k:%d}, want load of offset %d", op, k, offArch)
	}

	// last instruction always unconditionally allows
	last := prog[len(prog)-8:]
	lastOp := binary.LittleEndian.Uint16(last[0:2])
	lastK := binary.LittleEndian.Uint32(last[4:8])
	const bpfRet = 0x06
	if lastOp != bpfRet || lastK != seccompRetAllow {
		t.Fatalf("last instruction = {op:%#x k:%#x}, want unconditional allow", lastOp, lastK)
	}
}

func TestCompileRejectsNothingForEmptyRuleSet(t *testing.T) {
	prog, err := Compile(nativeArch, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// arch check (3 insns) + nr load (1) + default allow (1)
	if len(prog) != 8*5 {
		t.Fatalf("empty rule set produced %d bytes, want %d", len(prog), 8*5)
	}
}

func TestRetErrnoEncodesLowBits(t *testing.T) {
	got := retErrno(std.ScmpErrno(1))
	if got != seccompRetErrno|1 {
		t.Fatalf("retErrno(1) = %#x, want %#x", got, seccompRetErrno|1)
	}
}

func TestGroupBySyscallKeepsNonContiguousRunsSeparate(t *testing.T) {
	a := std.NativeRule{Syscall: 1}
	b := std.NativeRule{Syscall: 2}
	groups := groupBySyscall([]std.NativeRule{a, b, a})
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3 (non-contiguous runs must not merge)", len(groups))
	}
}

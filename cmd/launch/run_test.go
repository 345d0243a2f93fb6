package main

import (
	"context"
	"testing"
)

func TestSplitContextArgs(t *testing.T) {
	cases := []struct {
		name            string
		args            []string
		wantContextArgs []string
		wantRest        []string
	}{
		{"no context flags", []string{"printf", "hello"}, nil, []string{"printf", "hello"}},
		{"only context flags", []string{"--share=network", "--socket=wayland"}, []string{"--share=network", "--socket=wayland"}, nil},
		{
			"mixed", []string{"--share=network", "--socket=wayland", "printf", "--not-a-context-flag"},
			[]string{"--share=network", "--socket=wayland"}, []string{"printf", "--not-a-context-flag"},
		},
		{"empty", nil, nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gotCtx, gotRest := splitContextArgs(c.args)
			if !equalStrings(gotCtx, c.wantContextArgs) {
				t.Errorf("contextArgs = %v, want %v", gotCtx, c.wantContextArgs)
			}
			if !equalStrings(gotRest, c.wantRest) {
				t.Errorf("rest = %v, want %v", gotRest, c.wantRest)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunRunRequiresAppIDAndRuntimePath(t *testing.T) {
	err := runRun(context.Background(), nil, []string{"--branch", "stable", "printf", "hi"})
	if err == nil {
		t.Fatal("runRun() error = nil, want error for missing --app-id/--runtime-path")
	}
}

func TestRunRunRequiresCommand(t *testing.T) {
	err := runRun(context.Background(), nil, []string{"--app-id", "org.example.App", "--runtime-path", "/var/lib/runtime"})
	if err == nil {
		t.Fatal("runRun() error = nil, want error for missing COMMAND")
	}
}

func TestRunRunRejectsMissingRuntimePathEvenWithAppID(t *testing.T) {
	err := runRun(context.Background(), nil, []string{"--app-id", "org.example.App"})
	if err == nil {
		t.Fatal("runRun() error = nil, want error for missing --runtime-path")
	}
}

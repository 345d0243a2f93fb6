package main

import "testing"

func TestVersionStringFallsBackToDevelWhenUnset(t *testing.T) {
	old := version
	defer func() { version = old }()

	version = versionPoison
	if got := versionString(); got != "devel" {
		t.Errorf("versionString() = %q, want devel", got)
	}

	version = ""
	if got := versionString(); got != "devel" {
		t.Errorf("versionString() = %q, want devel", got)
	}
}

func TestVersionStringReturnsInjectedValue(t *testing.T) {
	old := version
	defer func() { version = old }()

	version = "v1.2.3"
	if got := versionString(); got != "v1.2.3" {
		t.Errorf("versionString() = %q, want v1.2.3", got)
	}
}

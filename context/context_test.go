package context

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCapMask_MergeFormula(t *testing.T) {
	var a, b CapMask
	a.Grant(bitNetwork)
	a.Deny(bitIPC)

	b.Grant(bitIPC) // overrides a's deny

	a.Merge(b)
	if !a.IsGranted(bitNetwork) {
		t.Errorf("network: want granted, got enabled=%#x valid=%#x", a.Enabled, a.Valid)
	}
	if !a.IsGranted(bitIPC) {
		t.Errorf("ipc: want granted after merge, got enabled=%#x valid=%#x", a.Enabled, a.Valid)
	}
}

func TestCapMask_MergeIdempotent(t *testing.T) {
	var a, b CapMask
	a.Grant(bitNetwork)
	b.Deny(bitIPC)

	a.Merge(b)
	want := a
	a.Merge(b)
	if a != want {
		t.Errorf("merge not idempotent: got %+v, want %+v", a, want)
	}
}

func TestGenericPolicyMergeCycle(t *testing.T) {
	// [foo, !foo, foo] -> [foo]
	var values []string
	for _, v := range []string{"foo", "!foo", "foo"} {
		values = applyPolicyValue(values, v)
	}
	if got := []string{"foo"}; !reflect.DeepEqual(values, got) {
		t.Errorf("applyPolicyValue sequence = %v, want %v", values, got)
	}
}

func TestBusPolicyPrecedence(t *testing.T) {
	c := New()
	c.SessionBusPolicy["org.example.Foo"] = PolicyTalk

	other := New()
	other.SessionBusPolicy["org.example.Foo"] = PolicyOwn
	c.Merge(other)

	if got := c.SessionBusPolicy["org.example.Foo"]; got != PolicyOwn {
		t.Errorf("session bus policy = %v, want %v (later merge wins)", got, PolicyOwn)
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	c := New()
	c.Shares.Grant(bitNetwork)
	c.Shares.Deny(bitIPC)
	c.Sockets.Grant(bitX11)
	c.Filesystems["home"] = ReadWrite
	c.Filesystems["/etc/resolv.conf"] = ReadOnly
	c.EnvVars["FOO"] = "bar"
	c.Persistent["state"] = struct{}{}
	c.SessionBusPolicy["org.example.Foo"] = PolicyTalk
	c.GenericPolicy["dconf.a"] = []string{"x", "!y"}

	out, err := c.Serialize(false)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v\n%s", err, out)
	}

	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeFlatten(t *testing.T) {
	c := New()
	c.Shares.Deny(bitNetwork)
	c.Filesystems["home"] = Negated
	c.GenericPolicy["dconf.a"] = []string{"x", "!y"}

	out, err := c.Serialize(true)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v\n%s", err, out)
	}

	if got.Shares.IsDenied(bitNetwork) {
		t.Errorf("flatten: denied bit survived serialization")
	}
	if _, ok := got.Filesystems["home"]; ok {
		t.Errorf("flatten: negated filesystem entry survived serialization")
	}
	if vals := got.GenericPolicy["dconf.a"]; !reflect.DeepEqual(vals, []string{"x"}) {
		t.Errorf("flatten: generic policy = %v, want [x]", vals)
	}
}

func TestCLIArgsRoundTrip(t *testing.T) {
	c := New()
	c.Shares.Grant(bitNetwork)
	c.Sockets.Deny(bitWayland)
	c.Filesystems["home"] = ReadWrite
	c.Filesystems["/etc/foo"] = Negated
	c.EnvVars["FOO"] = "bar"
	c.SessionBusPolicy["org.example.Foo"] = PolicyOwn
	c.SystemBusPolicy["org.example.Bar"] = PolicyTalk
	c.GenericPolicy["dconf.a"] = []string{"x"}
	c.Persistent["state"] = struct{}{}

	args := c.ToCLIArgs()

	got, err := ParseCLIArgs(args)
	if err != nil {
		t.Fatalf("ParseCLIArgs(%v): %v", args, err)
	}

	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("CLI round trip mismatch (-want +got):\n%s\nargs: %v", diff, args)
	}
}

func TestParseFilesystemItem(t *testing.T) {
	cases := []struct {
		in       string
		wantSpec string
		wantMode FSMode
	}{
		{"home", "home", ReadOnly},
		{"home:rw", "home", ReadWrite},
		{"home:create", "home", Create},
		{"!home", "home", Negated},
		{"xdg-music:ro", "xdg-music", ReadOnly},
	}
	for _, tc := range cases {
		spec, mode, err := parseFilesystemItem(tc.in)
		if err != nil {
			t.Errorf("parseFilesystemItem(%q): %v", tc.in, err)
			continue
		}
		if spec != tc.wantSpec || mode != tc.wantMode {
			t.Errorf("parseFilesystemItem(%q) = (%q, %v), want (%q, %v)", tc.in, spec, mode, tc.wantSpec, tc.wantMode)
		}
	}
}

func TestParseFilesystemItemInvalid(t *testing.T) {
	if _, _, err := parseFilesystemItem("relative/path"); err == nil {
		t.Errorf("parseFilesystemItem(relative path): want error, got nil")
	}
}

func TestValidBusPattern(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"org.freedesktop.Foo", true},
		{"org.freedesktop.portal.*", true},
		{":1.1", false},
		{"nodot", false},
		{"org.*", false},
	}
	for _, tc := range cases {
		if got := validBusPattern(tc.in); got != tc.want {
			t.Errorf("validBusPattern(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDefaultGrantsPortalTalk(t *testing.T) {
	c := Default()
	if got := c.SessionBusPolicy["org.freedesktop.portal.*"]; got != PolicyTalk {
		t.Errorf("Default() session bus policy = %v, want %v", got, PolicyTalk)
	}
}

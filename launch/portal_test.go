package launch

import (
	"context"
	"testing"
)

func TestTrimNul(t *testing.T) {
	cases := []struct {
		in   []byte
		want string
	}{
		{[]byte("/run/user/1000/doc\x00"), "/run/user/1000/doc"},
		{[]byte("/run/user/1000/doc"), "/run/user/1000/doc"},
		{[]byte{}, ""},
	}
	for _, c := range cases {
		if got := string(trimNul(c.in)); got != c.want {
			t.Errorf("trimNul(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExportDocumentMissingFileFails(t *testing.T) {
	if _, err := exportDocument(context.Background(), "/nonexistent/path/to/file"); err == nil {
		t.Error("exportDocument() of a missing file did not return an error")
	}
}

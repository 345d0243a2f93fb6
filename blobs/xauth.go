package blobs

import (
	"bytes"
	"encoding/binary"
	"io"
)

// X11 Xauthority address families, matching Xauth.h. No ecosystem Go
// package parses this format; it is small and stable enough to read and
// write directly.
const (
	xauthFamilyLocal = 256
	xauthFamilyWild  = 65535
)

type xauthEntry struct {
	family uint16
	addr   []byte
	number []byte
	name   []byte
	data   []byte
}

func readXauthEntry(r io.Reader) (*xauthEntry, error) {
	e := new(xauthEntry)
	var err error
	if err = binary.Read(r, binary.BigEndian, &e.family); err != nil {
		return nil, err
	}
	if e.addr, err = readXauthField(r); err != nil {
		return nil, err
	}
	if e.number, err = readXauthField(r); err != nil {
		return nil, err
	}
	if e.name, err = readXauthField(r); err != nil {
		return nil, err
	}
	if e.data, err = readXauthField(r); err != nil {
		return nil, err
	}
	return e, nil
}

func readXauthField(r io.Reader) ([]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeXauthEntry(w io.Writer, e *xauthEntry) error {
	if err := binary.Write(w, binary.BigEndian, e.family); err != nil {
		return err
	}
	for _, f := range [][]byte{e.addr, e.number, e.name, e.data} {
		if err := binary.Write(w, binary.BigEndian, uint16(len(f))); err != nil {
			return err
		}
		if _, err := w.Write(f); err != nil {
			return err
		}
	}
	return nil
}

// shouldPropagate reports whether an Xauthority entry should be copied into
// the sandbox's own authority file, following flatpak's own rule: only
// local-family (matching this host's name) or wildcard-family entries, and
// only entries naming no display or naming the one being exposed.
func shouldPropagate(e *xauthEntry, hostname, display string) bool {
	if e.family != xauthFamilyLocal && e.family != xauthFamilyWild {
		return false
	}
	if e.family == xauthFamilyLocal && string(e.addr) != hostname {
		return false
	}
	if len(e.number) != 0 && string(e.number) != display {
		return false
	}
	return true
}

// FilterXauthority reads raw Xauthority data and returns a filtered copy
// containing only entries relevant to hostname/display, with the display
// number rewritten to "99" (the fixed sandbox-internal display number)
// wherever an entry names one at all.
func FilterXauthority(raw []byte, hostname, display string) []byte {
	r := bytes.NewReader(raw)
	var out bytes.Buffer
	for {
		e, err := readXauthEntry(r)
		if err != nil {
			break
		}
		if !shouldPropagate(e, hostname, display) {
			continue
		}
		if len(e.number) != 0 {
			e.number = []byte("99")
		}
		_ = writeXauthEntry(&out, e)
	}
	return out.Bytes()
}

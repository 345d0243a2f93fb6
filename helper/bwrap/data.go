package bwrap

import (
	"context"
	"strconv"

	"firelock.dev/launcher/helper/proc"
	"firelock.dev/launcher/internal/memfd"
)

const (
	dataFile   = "--file"
	dataBind   = "--bind-data"
	dataROBind = "--ro-bind-data"
)

// dataF is the fd-backed counterpart of pairF: instead of naming a host
// path, it seals its content into an anonymous memfd ahead of spawn and
// passes that fd's number as the first positional argument, mirroring
// fileF but with an extra destination operand.
type dataF struct {
	name string
	dest string
	file *[]byte

	proc.BaseFile
}

func (d *dataF) Path() string { return d.dest }
func (d *dataF) ErrCount() int { return 0 }

// Fulfill seals the backing content into a memfd and makes it available
// through [proc.BaseFile]. Content is already fully materialized ahead of
// spawn, so this never blocks.
func (d *dataF) Fulfill(_ context.Context, _ func(error)) error {
	f, err := memfd.New(d.name, *d.file, true)
	if err != nil {
		return err
	}
	d.Set(f)
	return nil
}

func (d *dataF) Len() int { return 3 }

func (d *dataF) Append(args *[]string) {
	*args = append(*args, d.name, strconv.Itoa(int(d.Fd())), d.dest)
}

// AddData seals data into a sealed memfd and arranges for the executor to
// copy it to dest inside the sandbox without creating a bind-mounted
// backing file on the host (--file DEST).
func (c *Config) AddData(dest string, data []byte) *Config {
	c.dataFiles = append(c.dataFiles, &dataF{name: dataFile, dest: dest, file: &data})
	return c
}

// AddBindData is like AddData, but the destination is itself bind-mounted
// from the sealed backing file rather than copied (--bind-data DEST).
func (c *Config) AddBindData(dest string, data []byte) *Config {
	c.dataFiles = append(c.dataFiles, &dataF{name: dataBind, dest: dest, file: &data})
	return c
}

// AddROBindData is like AddBindData, but the bind is read-only
// (--ro-bind-data DEST). This is the mechanism behind the AppInfo
// unfakeable double-fd mount: a regular file copy at one path and a
// read-only bind of the same sealed content at another, so neither fd can
// be used by the sandboxed process to tamper with what the other reads.
func (c *Config) AddROBindData(dest string, data []byte) *Config {
	c.dataFiles = append(c.dataFiles, &dataF{name: dataROBind, dest: dest, file: &data})
	return c
}

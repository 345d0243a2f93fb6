package bwrap

import (
	"slices"
	"strconv"
)

// intArgs renders the UID/GID flags.
func (c *Config) intArgs() Builder {
	return &intArg{
		{"--uid", c.UID},
		{"--gid", c.GID},
	}
}

type intArg []struct {
	flag string
	v    *int
}

func (n *intArg) Len() (l int) {
	for _, e := range *n {
		if e.v != nil {
			l += 2
		}
	}
	return
}

func (n *intArg) Append(args *[]string) {
	for _, e := range *n {
		if e.v != nil {
			*args = append(*args, e.flag, strconv.Itoa(*e.v))
		}
	}
}

// stringArgs renders the single-value string flags.
func (c *Config) stringArgs() Builder {
	n := make(stringArg, 0, 2+len(c.UnsetEnv)+len(c.LockFile))
	if c.Hostname != "" {
		n = append(n, [2]string{"--hostname", c.Hostname})
	}
	if c.Chdir != "" {
		n = append(n, [2]string{"--chdir", c.Chdir})
	}
	for _, v := range c.UnsetEnv {
		n = append(n, [2]string{"--unsetenv", v})
	}
	for _, v := range c.LockFile {
		n = append(n, [2]string{"--lock-file", v})
	}
	return &n
}

type stringArg [][2]string

func (s *stringArg) Len() int { return len(*s) * 2 }

func (s *stringArg) Append(args *[]string) {
	for _, e := range *s {
		*args = append(*args, e[0], e[1])
	}
}

// pairArgs renders --setenv, in deterministic key order.
func (c *Config) pairArgs() Builder {
	n := make(pairArg, 0, len(c.SetEnv))
	keys := make([]string, 0, len(c.SetEnv))
	for k := range c.SetEnv {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n = append(n, [2]string{k, c.SetEnv[k]})
	}
	return &n
}

type pairArg [][2]string

func (p *pairArg) Len() int { return len(*p) * 3 }

func (p *pairArg) Append(args *[]string) {
	for _, e := range *p {
		*args = append(*args, "--setenv", e[0], e[1])
	}
}

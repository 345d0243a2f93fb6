package context

import (
	"fmt"
	"slices"
	"strings"
)

// ToCLIArgs emits the equivalent `--share=`/`--socket=`/... argument list
// for c, per spec §4.1, so that any context can round-trip through the CLI
// surface described in spec §6.
func (c *Context) ToCLIArgs() []string {
	var args []string

	args = append(args, cliCapArgs(c.Shares, sharesKind)...)
	args = append(args, cliCapArgs(c.Sockets, socketsKind)...)
	args = append(args, cliCapArgs(c.Devices, devicesKind)...)
	args = append(args, cliCapArgs(c.Features, featuresKind)...)

	specs := make([]string, 0, len(c.Filesystems))
	for s := range c.Filesystems {
		specs = append(specs, s)
	}
	slices.Sort(specs)
	for _, spec := range specs {
		switch mode := c.Filesystems[spec]; mode {
		case Negated:
			args = append(args, "--nofilesystem="+spec)
		case ReadOnly:
			args = append(args, "--filesystem="+spec)
		case ReadWrite:
			args = append(args, "--filesystem="+spec+":rw")
		case Create:
			args = append(args, "--filesystem="+spec+":create")
		}
	}

	names := make([]string, 0, len(c.EnvVars))
	for k := range c.EnvVars {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		args = append(args, fmt.Sprintf("--env=%s=%s", k, c.EnvVars[k]))
	}

	args = append(args, cliBusPolicyArgs(c.SessionBusPolicy, "--own-name=", "--talk-name=")...)
	args = append(args, cliBusPolicyArgs(c.SystemBusPolicy, "--system-own-name=", "--system-talk-name=")...)

	keys := make([]string, 0, len(c.GenericPolicy))
	for k := range c.GenericPolicy {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range c.GenericPolicy[k] {
			if strings.HasPrefix(v, "!") {
				args = append(args, fmt.Sprintf("--remove-policy=%s=%s", k, strings.TrimPrefix(v, "!")))
			} else {
				args = append(args, fmt.Sprintf("--add-policy=%s=%s", k, v))
			}
		}
	}

	persist := make([]string, 0, len(c.Persistent))
	for p := range c.Persistent {
		persist = append(persist, p)
	}
	slices.Sort(persist)
	for _, p := range persist {
		args = append(args, "--persist="+p)
	}

	return args
}

func cliCapArgs(mask CapMask, kind capKind) []string {
	names := kind.names()
	slices.Sort(names)
	var args []string
	for _, name := range names {
		bit := kind.bits[name]
		switch {
		case mask.IsGranted(bit):
			args = append(args, "--"+kind.cliShare+"="+name)
		case mask.IsDenied(bit):
			args = append(args, "--"+kind.cliNoShare+"="+name)
		}
	}
	return args
}

func cliBusPolicyArgs(policy map[string]Policy, ownFlag, talkFlag string) []string {
	names := make([]string, 0, len(policy))
	for n := range policy {
		names = append(names, n)
	}
	slices.Sort(names)
	var args []string
	for _, n := range names {
		switch policy[n] {
		case PolicyOwn:
			args = append(args, ownFlag+n)
		case PolicyTalk:
			args = append(args, talkFlag+n)
		}
	}
	return args
}

// ParseCLIArgs applies the CLI flag surface described in spec §6 to a fresh
// Context. Unrecognised flags are ignored (the caller's flag parser is
// expected to have already validated the surface); this only interprets
// the Name=Value flags the spec lists.
func ParseCLIArgs(args []string) (*Context, error) {
	c := New()
	for _, arg := range args {
		name, value, ok := splitFlag(arg)
		if !ok {
			continue
		}
		if err := applyCLIFlag(c, name, value); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func splitFlag(arg string) (name, value string, ok bool) {
	if !strings.HasPrefix(arg, "--") {
		return "", "", false
	}
	arg = arg[2:]
	i := strings.IndexByte(arg, '=')
	if i < 0 {
		return arg, "", true
	}
	return arg[:i], arg[i+1:], true
}

func applyCLIFlag(c *Context, name, value string) error {
	switch name {
	case "share":
		return applyCapList(&c.Shares, sharesKind, []string{value})
	case "unshare":
		return applyCapList(&c.Shares, sharesKind, []string{"!" + value})
	case "socket":
		return applyCapList(&c.Sockets, socketsKind, []string{value})
	case "nosocket":
		return applyCapList(&c.Sockets, socketsKind, []string{"!" + value})
	case "device":
		return applyCapList(&c.Devices, devicesKind, []string{value})
	case "nodevice":
		return applyCapList(&c.Devices, devicesKind, []string{"!" + value})
	case "allow":
		return applyCapList(&c.Features, featuresKind, []string{value})
	case "disallow":
		return applyCapList(&c.Features, featuresKind, []string{"!" + value})
	case "filesystem":
		spec, mode, err := parseFilesystemItem(value)
		if err != nil {
			return err
		}
		c.Filesystems[spec] = mode
		return nil
	case "nofilesystem":
		if !validFilesystemSpec(value) {
			return badFilesystemSpec(value)
		}
		c.Filesystems[value] = Negated
		return nil
	case "env":
		k, v, _ := strings.Cut(value, "=")
		c.EnvVars[k] = v
		return nil
	case "own-name":
		return setBusPolicy(c.SessionBusPolicy, value, PolicyOwn)
	case "talk-name":
		return setBusPolicy(c.SessionBusPolicy, value, PolicyTalk)
	case "system-own-name":
		return setBusPolicy(c.SystemBusPolicy, value, PolicyOwn)
	case "system-talk-name":
		return setBusPolicy(c.SystemBusPolicy, value, PolicyTalk)
	case "add-policy":
		return applyGenericPolicyFlag(c, value, false)
	case "remove-policy":
		return applyGenericPolicyFlag(c, value, true)
	case "persist":
		c.Persistent[value] = struct{}{}
		return nil
	default:
		return nil
	}
}

func setBusPolicy(policy map[string]Policy, name string, p Policy) error {
	if !validBusPattern(name) {
		return badBusName(name)
	}
	policy[name] = p
	return nil
}

func applyGenericPolicyFlag(c *Context, spec string, remove bool) error {
	// spec is "subsystem.key=value"
	eq := strings.IndexByte(spec, '=')
	if eq < 0 {
		return badGenericPolicyKey(spec)
	}
	key, value := spec[:eq], spec[eq+1:]
	if !validGenericPolicyKey(key) {
		return badGenericPolicyKey(key)
	}
	if strings.HasPrefix(value, "!") {
		return badPolicyValue(value)
	}
	if remove {
		value = "!" + value
	}
	c.GenericPolicy[key] = applyPolicyValue(c.GenericPolicy[key], value)
	return nil
}

package context

// Merge applies other on top of c, per spec §4.1: capability masks use the
// three-valued merge formula; env_vars/persistent/filesystems/bus policies
// use last-writer-wins per key; generic_policy entries are applied one at a
// time via applyPolicyValue so a later "!X" shadows an earlier "X" and
// vice-versa.
func (c *Context) Merge(other *Context) {
	if other == nil {
		return
	}

	c.Shares.Merge(other.Shares)
	c.Sockets.Merge(other.Sockets)
	c.Devices.Merge(other.Devices)
	c.Features.Merge(other.Features)

	for k, v := range other.EnvVars {
		c.EnvVars[k] = v
	}
	for k := range other.Persistent {
		c.Persistent[k] = struct{}{}
	}
	for k, v := range other.Filesystems {
		c.Filesystems[k] = v
	}
	for k, v := range other.SessionBusPolicy {
		c.SessionBusPolicy[k] = v
	}
	for k, v := range other.SystemBusPolicy {
		c.SystemBusPolicy[k] = v
	}
	for k, values := range other.GenericPolicy {
		cur := c.GenericPolicy[k]
		for _, v := range values {
			cur = applyPolicyValue(cur, v)
		}
		c.GenericPolicy[k] = cur
	}
}

// Normalize clears every enabled bit not marked valid in every capability
// mask, per the serialization invariant in spec §3.
func (c *Context) Normalize() {
	c.Shares.Normalize()
	c.Sockets.Normalize()
	c.Devices.Normalize()
	c.Features.Normalize()
}

// Clone returns a deep copy of c.
func (c *Context) Clone() *Context {
	out := New()
	out.Shares, out.Sockets, out.Devices, out.Features = c.Shares, c.Sockets, c.Devices, c.Features
	for k, v := range c.EnvVars {
		out.EnvVars[k] = v
	}
	for k := range c.Persistent {
		out.Persistent[k] = struct{}{}
	}
	for k, v := range c.Filesystems {
		out.Filesystems[k] = v
	}
	for k, v := range c.SessionBusPolicy {
		out.SessionBusPolicy[k] = v
	}
	for k, v := range c.SystemBusPolicy {
		out.SystemBusPolicy[k] = v
	}
	for k, values := range c.GenericPolicy {
		out.GenericPolicy[k] = append([]string(nil), values...)
	}
	return out
}

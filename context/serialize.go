package context

import (
	"slices"
	"strings"
)

// Serialize renders c back to flatpak-style INI metadata, the inverse of
// [Parse]. When flatten is true the three-valued representation is
// dropped: denied bits and "!"-prefixed generic-policy entries are omitted,
// because the result is self-contained and will never be merged on top of
// anything else.
func (c *Context) Serialize(flatten bool) ([]byte, error) {
	doc := newIniDocument()

	ctxGroup := doc.group(groupContext)
	if v := renderCapList(c.Shares, sharesKind, flatten); v != "" {
		ctxGroup.set("shared", v)
	}
	if v := renderCapList(c.Sockets, socketsKind, flatten); v != "" {
		ctxGroup.set("sockets", v)
	}
	if v := renderCapList(c.Devices, devicesKind, flatten); v != "" {
		ctxGroup.set("devices", v)
	}
	if v := renderCapList(c.Features, featuresKind, flatten); v != "" {
		ctxGroup.set("features", v)
	}
	if v := renderFilesystems(c.Filesystems, flatten); v != "" {
		ctxGroup.set("filesystems", v)
	}
	if len(c.Persistent) > 0 {
		items := make([]string, 0, len(c.Persistent))
		for p := range c.Persistent {
			items = append(items, p)
		}
		slices.Sort(items)
		ctxGroup.set("persistent", joinList(items))
	}

	renderBusPolicy(doc.group(groupSessionBusPolicy), c.SessionBusPolicy)
	renderBusPolicy(doc.group(groupSystemBusPolicy), c.SystemBusPolicy)

	if len(c.EnvVars) > 0 {
		g := doc.group(groupEnvironment)
		keys := make([]string, 0, len(c.EnvVars))
		for k := range c.EnvVars {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			g.set(k, c.EnvVars[k])
		}
	}

	renderGenericPolicy(doc, c.GenericPolicy, flatten)

	return doc.render(), nil
}

func renderCapList(mask CapMask, kind capKind, flatten bool) string {
	names := kind.names()
	slices.Sort(names)
	var items []string
	for _, name := range names {
		bit := kind.bits[name]
		switch {
		case mask.IsGranted(bit):
			items = append(items, name)
		case mask.IsDenied(bit) && !flatten:
			items = append(items, "!"+name)
		}
	}
	return joinList(items)
}

func renderFilesystems(fs map[string]FSMode, flatten bool) string {
	specs := make([]string, 0, len(fs))
	for s := range fs {
		specs = append(specs, s)
	}
	slices.Sort(specs)
	var items []string
	for _, spec := range specs {
		switch mode := fs[spec]; mode {
		case Negated:
			if !flatten {
				items = append(items, "!"+spec)
			}
		case ReadOnly:
			items = append(items, spec)
		case ReadWrite:
			items = append(items, spec+":rw")
		case Create:
			items = append(items, spec+":create")
		}
	}
	return joinList(items)
}

func renderBusPolicy(g *iniGroup, policy map[string]Policy) {
	names := make([]string, 0, len(policy))
	for n := range policy {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		g.set(n, policy[n].String())
	}
}

func renderGenericPolicy(doc *iniDocument, policy map[string][]string, flatten bool) {
	keys := make([]string, 0, len(policy))
	for k := range policy {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		i := strings.IndexByte(k, '.')
		subsystem, key := k[:i], k[i+1:]
		g := doc.group(groupPolicyPrefix + " " + subsystem)

		values := policy[k]
		var out []string
		for _, v := range values {
			if flatten {
				if strings.HasPrefix(v, "!") {
					continue
				}
			}
			out = append(out, v)
		}
		g.set(key, joinList(out))
	}
}

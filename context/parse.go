package context

import "strings"

const (
	groupContext          = "Context"
	groupSessionBusPolicy = "Session Bus Policy"
	groupSystemBusPolicy  = "System Bus Policy"
	groupEnvironment      = "Environment"
	groupPolicyPrefix     = "Policy"
)

// Parse reads flatpak-style INI metadata and returns the Context it
// describes, per spec §4.1. LoadOverrides shares this grammar; the two
// differ only in intent (parse reads deployed metadata, LoadOverrides reads
// a layer meant to be merged on top of it).
func Parse(metadata []byte) (*Context, error) {
	doc, err := parseIni(metadata)
	if err != nil {
		return nil, err
	}
	return contextFromIni(doc)
}

// LoadOverrides reads an overrides file using the same grammar as [Parse].
func LoadOverrides(data []byte) (*Context, error) { return Parse(data) }

func contextFromIni(doc *iniDocument) (*Context, error) {
	c := New()

	if doc.has(groupContext) {
		g := doc.group(groupContext)
		if v, ok := g.get("shared"); ok {
			if err := applyCapList(&c.Shares, sharesKind, splitList(v)); err != nil {
				return nil, err
			}
		}
		if v, ok := g.get("sockets"); ok {
			if err := applyCapList(&c.Sockets, socketsKind, splitList(v)); err != nil {
				return nil, err
			}
		}
		if v, ok := g.get("devices"); ok {
			if err := applyCapList(&c.Devices, devicesKind, splitList(v)); err != nil {
				return nil, err
			}
		}
		if v, ok := g.get("features"); ok {
			if err := applyCapList(&c.Features, featuresKind, splitList(v)); err != nil {
				return nil, err
			}
		}
		if v, ok := g.get("filesystems"); ok {
			for _, item := range splitList(v) {
				spec, mode, err := parseFilesystemItem(item)
				if err != nil {
					return nil, err
				}
				c.Filesystems[spec] = mode
			}
		}
		if v, ok := g.get("persistent"); ok {
			for _, item := range splitList(v) {
				c.Persistent[item] = struct{}{}
			}
		}
	}

	if doc.has(groupSessionBusPolicy) {
		if err := parseBusPolicy(doc.group(groupSessionBusPolicy), c.SessionBusPolicy); err != nil {
			return nil, err
		}
	}
	if doc.has(groupSystemBusPolicy) {
		if err := parseBusPolicy(doc.group(groupSystemBusPolicy), c.SystemBusPolicy); err != nil {
			return nil, err
		}
	}
	if doc.has(groupEnvironment) {
		g := doc.group(groupEnvironment)
		for _, k := range g.keys {
			v, _ := g.get(k)
			c.EnvVars[k] = v
		}
	}

	for _, name := range doc.order {
		if name == groupPolicyPrefix || !strings.HasPrefix(name, groupPolicyPrefix) {
			continue
		}
		subsystem := strings.TrimSpace(strings.TrimPrefix(name, groupPolicyPrefix))
		g := doc.group(name)
		for _, key := range g.keys {
			fullKey := subsystem + "." + key
			if !validGenericPolicyKey(fullKey) {
				return nil, badGenericPolicyKey(fullKey)
			}
			v, _ := g.get(key)
			for _, item := range splitList(v) {
				c.GenericPolicy[fullKey] = applyPolicyValue(c.GenericPolicy[fullKey], item)
			}
		}
	}

	return c, nil
}

// applyCapList applies a "!"-prefixable list of bit names to mask using
// kind's name table.
func applyCapList(mask *CapMask, kind capKind, items []string) error {
	for _, item := range items {
		deny := strings.HasPrefix(item, "!")
		name := strings.TrimPrefix(item, "!")
		bit, ok := kind.bits[name]
		if !ok {
			return unknownName(kind.name, name, kind.names())
		}
		if deny {
			mask.Deny(bit)
		} else {
			mask.Grant(bit)
		}
	}
	return nil
}

// parseFilesystemItem parses one "filesystems" list entry: a spec optionally
// suffixed ":ro"/":rw"/":create", optionally "!"-prefixed for Negated.
func parseFilesystemItem(item string) (spec string, mode FSMode, err error) {
	if strings.HasPrefix(item, "!") {
		spec = strings.TrimPrefix(item, "!")
		if !validFilesystemSpec(trimFsSuffix(spec)) {
			return "", 0, badFilesystemSpec(item)
		}
		return trimFsSuffix(spec), Negated, nil
	}

	spec = item
	mode = ReadOnly
	if i := strings.LastIndexByte(item, ':'); i >= 0 {
		switch item[i+1:] {
		case "ro":
			spec, mode = item[:i], ReadOnly
		case "rw":
			spec, mode = item[:i], ReadWrite
		case "create":
			spec, mode = item[:i], Create
		}
	}
	if !validFilesystemSpec(spec) {
		return "", 0, badFilesystemSpec(item)
	}
	return spec, mode, nil
}

func trimFsSuffix(spec string) string {
	if i := strings.LastIndexByte(spec, ':'); i >= 0 {
		switch spec[i+1:] {
		case "ro", "rw", "create":
			return spec[:i]
		}
	}
	return spec
}

func parseBusPolicy(g *iniGroup, out map[string]Policy) error {
	for _, name := range g.keys {
		if !validBusPattern(name) {
			return badBusName(name)
		}
		v, _ := g.get(name)
		p, ok := policyNames[strings.ToLower(v)]
		if !ok {
			return unknownName("policy", v, []string{"none", "see", "filtered", "talk", "own"})
		}
		out[name] = p
	}
	return nil
}

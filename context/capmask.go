package context

// CapMask is a three-valued capability bitmask: a bit is granted iff set in
// both Enabled and Valid, denied iff set in Valid but clear in Enabled, and
// unspecified iff clear in Valid. The pair survives a merge where a
// lower-priority layer's deny must not be silently overridden by a
// higher-priority layer's silence on the same bit.
type CapMask struct {
	Enabled uint32
	Valid   uint32
}

// Grant sets bit as granted.
func (m *CapMask) Grant(bit uint32) { m.Enabled |= bit; m.Valid |= bit }

// Deny sets bit as denied.
func (m *CapMask) Deny(bit uint32) { m.Enabled &^= bit; m.Valid |= bit }

// IsGranted reports whether bit is granted.
func (m CapMask) IsGranted(bit uint32) bool { return m.Enabled&bit != 0 && m.Valid&bit != 0 }

// IsDenied reports whether bit is explicitly denied.
func (m CapMask) IsDenied(bit uint32) bool { return m.Valid&bit != 0 && m.Enabled&bit == 0 }

// IsUnspecified reports whether bit carries no opinion.
func (m CapMask) IsUnspecified(bit uint32) bool { return m.Valid&bit == 0 }

// Normalize clears any enabled bit not marked valid.
func (m *CapMask) Normalize() { m.Enabled &^= ^m.Valid }

// Merge applies other on top of m: m.enabled = (m.enabled & ~other.valid) |
// other.enabled; m.valid |= other.valid.
func (m *CapMask) Merge(other CapMask) {
	m.Enabled = (m.Enabled &^ other.Valid) | other.Enabled
	m.Valid |= other.Valid
}

// capKind names the four capability groups and their named bits, used both
// by the INI parser and by ToCLIArgs.
type capKind struct {
	name string
	bits map[string]uint32
	// cliShare/cliNoShare are the CLI flag names (e.g. "share"/"unshare");
	// empty for groups whose flag name does not follow that pair naming.
	cliShare, cliNoShare string
}

const (
	bitNetwork uint32 = 1 << iota
	bitIPC
)

const (
	bitX11 uint32 = 1 << iota
	bitWayland
	bitPulseaudio
	bitSessionBus
	bitSystemBus
)

// Exported socket capability bits, for components outside this package
// (busproxy, the orchestrator) that need to test Context.Sockets directly
// rather than go through the CLI/INI codecs.
const (
	SocketX11        = bitX11
	SocketWayland    = bitWayland
	SocketPulseaudio = bitPulseaudio
	SocketSessionBus = bitSessionBus
	SocketSystemBus  = bitSystemBus
)

const (
	bitDRI uint32 = 1 << iota
	bitAll
	bitKVM
)

// Exported device capability bits, for the orchestrator's GPU/KVM passthrough
// decisions.
const (
	DeviceDRI = bitDRI
	DeviceAll = bitAll
	DeviceKVM = bitKVM
)

const (
	bitDevel uint32 = 1 << iota
	bitMultiarch
)

// Exported feature capability bits, for the orchestrator's seccomp and
// multiarch decisions.
const (
	FeatureDevel     = bitDevel
	FeatureMultiarch = bitMultiarch
)

// Exported share capability bits, for the orchestrator's network/IPC
// namespace decisions.
const (
	ShareNetwork = bitNetwork
	ShareIPC     = bitIPC
)

var (
	sharesKind = capKind{
		name: "shared",
		bits: map[string]uint32{"network": bitNetwork, "ipc": bitIPC},
		cliShare: "share", cliNoShare: "unshare",
	}
	socketsKind = capKind{
		name: "sockets",
		bits: map[string]uint32{
			"x11": bitX11, "wayland": bitWayland, "pulseaudio": bitPulseaudio,
			"session-bus": bitSessionBus, "system-bus": bitSystemBus,
		},
		cliShare: "socket", cliNoShare: "nosocket",
	}
	devicesKind = capKind{
		name: "devices",
		bits: map[string]uint32{"dri": bitDRI, "all": bitAll, "kvm": bitKVM},
		cliShare: "device", cliNoShare: "nodevice",
	}
	featuresKind = capKind{
		name: "features",
		bits: map[string]uint32{"devel": bitDevel, "multiarch": bitMultiarch},
		cliShare: "allow", cliNoShare: "disallow",
	}
)

// names returns the bit names of k, used to build ParseError.ValidValues.
func (k capKind) names() []string {
	names := make([]string, 0, len(k.bits))
	for n := range k.bits {
		names = append(names, n)
	}
	return names
}

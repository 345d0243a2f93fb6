package blobs

// PulseClientConf is the sandboxed client.conf handed to PulseAudio
// clients: shared-memory transport is refused since the sandbox's tmpfs
// /dev/shm is not shared with the host's PulseAudio server.
const PulseClientConf = "enable-shm=no\n"

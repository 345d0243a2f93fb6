package blobs

// LdSoConf is the fixed content installed at /etc/ld.so.conf when the
// runtime's own etc/ld.so.conf is a regular empty file (the usual case).
// Runtime fragments are listed last so an app-supplied library of the
// same name takes precedence over a runtime extension's copy.
const LdSoConf = "" +
	"include /run/flatpak/ld.so.conf.d/app-*.conf\n" +
	"include /app/etc/ld.so.conf\n" +
	"/app/lib\n" +
	"include /run/flatpak/ld.so.conf.d/runtime-*.conf\n"

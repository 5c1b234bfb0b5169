package version

// Version is set at build time via -ldflags "-X ...version.Version=v1.2.3".
var Version = "dev"

// Package version exposes capdag build information.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/capdag/version.Version=1.0.0" ./cmd/capdag
//
// Missing values fall back to the VCS stamps in runtime/debug build info.
package version

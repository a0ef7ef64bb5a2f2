package version

import "fmt"

// Version and Commit are overridden at build time with
// -ldflags "-X github.com/bnema/billboard-cli/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = ""
)

// Build names the binary, with the commit when one was stamped.
func Build() string {
	if Commit == "" {
		return "bb " + Version
	}
	return fmt.Sprintf("bb %s (%s)", Version, Commit)
}

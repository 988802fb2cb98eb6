package version

import "fmt"

// Name is recorded as the contract name when a store is set up.
const Name = "todo-ledger"

// These variables are set at build time via ldflags
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the human-readable version string.
func String() string {
	return fmt.Sprintf("todo %s (commit: %s, built: %s)", Version, shortCommit(), BuildTime)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

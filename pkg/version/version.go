package version

import "fmt"

// Current defines the application version.
// It defaults to "dev" and is set at build time with -ldflags.
var Current = "dev"

// Commit is the git revision, injected via ldflags.
var Commit = "none"

const AppName = "proofscope"

// String renders the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("%s %s (%s)", AppName, Current, Commit)
}

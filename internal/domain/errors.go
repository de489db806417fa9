package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNetworkMismatch is returned when the chain behind an RPC or a
	// deployments directory doesn't match the configured network
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrNetworkRequired is returned when a command needs a network and none was selected
	ErrNetworkRequired = errors.New("network is required (use --network or `mangonel config set network <name>`)")

	// ErrUnknownNetwork is returned when a network name is not declared in mangonel.toml
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrAccountNotFound is returned when a named account can't be resolved to a key
	ErrAccountNotFound = errors.New("account not found")

	// ErrSignerWithoutKey is returned when a read-only account is used to send transactions
	ErrSignerWithoutKey = errors.New("account has no private key")

	// ErrArtifactNotFound is returned when no compiled artifact matches a contract name
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrUnlinkedLibraries is returned when bytecode still contains library placeholders
	ErrUnlinkedLibraries = errors.New("bytecode has unlinked libraries")

	// ErrTransactionReverted is returned when a mined transaction has status 0
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrUpgradeRequired is returned when a proxy exists but its implementation changed
	ErrUpgradeRequired = errors.New("implementation changed, proxy upgrade required")

	// ErrDependencyCycle is returned when deploy scripts depend on each other in a loop
	ErrDependencyCycle = errors.New("dependency cycle between deploy scripts")

	// ErrNoScriptsMatch is returned when no deploy script carries the requested tags
	ErrNoScriptsMatch = errors.New("no deploy scripts match")

	// ErrMissingAPIKey is returned when no explorer API key is configured for a network
	ErrMissingAPIKey = errors.New("no explorer API key configured")

	// ErrVerificationFailed is returned when contract verification fails
	ErrVerificationFailed = errors.New("verification failed")

	// ErrAborted is returned when the user declines a confirmation prompt
	ErrAborted = errors.New("aborted by user")
)

// AmbiguousArtifactErr is returned when a contract name matches several artifacts
type AmbiguousArtifactErr struct {
	Name    string
	Matches []string
}

func (e AmbiguousArtifactErr) Error() string {
	matches := make([]string, len(e.Matches))
	copy(matches, e.Matches)
	sort.Strings(matches)

	var suggestions []string
	for _, m := range matches {
		suggestions = append(suggestions, fmt.Sprintf("  - %s", m))
	}

	return fmt.Sprintf("multiple artifacts found for %s - set `contract` to the full artifact path:\n%s",
		e.Name, strings.Join(suggestions, "\n"))
}

// DeploymentNotFoundErr carries close matches for a missing deployment reference
type DeploymentNotFoundErr struct {
	Reference   string
	Network     string
	Suggestions []string
}

func (e DeploymentNotFoundErr) Error() string {
	msg := fmt.Sprintf("deployment %q not found on %s", e.Reference, e.Network)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e DeploymentNotFoundErr) Unwrap() error {
	return ErrNotFound
}

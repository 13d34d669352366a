package pipeline

import (
	"fmt"
	"strings"
)

// Policy selects how a stage delays data and acceptance.
type Policy int

// The register-insertion policies. Every stage of a pipeline uses one.
const (
	// PassThrough wires the stage straight through.
	PassThrough Policy = iota

	// Decoupling inserts no register. While decoupled it forces validity
	// low, reset high and upstream acceptance low.
	Decoupling

	// Simple registers data and validity, capturing whenever the consumer
	// accepts.
	Simple

	// Primed captures whenever the consumer accepts or the register is
	// empty, so that the stage never injects an idle cycle.
	Primed

	// Gated behaves as Simple but only updates the payload when the input
	// is valid.
	Gated

	// PrimedGated combines Primed and Gated.
	PrimedGated

	// ReadyDecoupled adds an overflow register so that the upstream
	// acceptance is itself registered.
	ReadyDecoupled
)

var policyNames = map[Policy]string{
	PassThrough:    "pass-through",
	Decoupling:     "decoupling",
	Simple:         "simple",
	Primed:         "primed",
	Gated:          "gated",
	PrimedGated:    "primed-gated",
	ReadyDecoupled: "ready-decoupled",
}

func (p Policy) String() string {
	name, ok := policyNames[p]
	if !ok {
		return fmt.Sprintf("Policy(%d)", int(p))
	}

	return name
}

// Registered reports whether the policy inserts a register.
func (p Policy) Registered() bool {
	return p != PassThrough && p != Decoupling
}

// BubbleFree reports whether the stage never forces an idle cycle when both
// sides are continuously ready.
func (p Policy) BubbleFree() bool {
	switch p {
	case Primed, PrimedGated, ReadyDecoupled:
		return true
	default:
		return false
	}
}

// ParsePolicy converts a policy name, as printed by String, to a Policy.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown pipeline policy %q", s)
}

// ParsePolicies converts a comma separated list of policy names. An empty
// string yields an empty list.
func ParsePolicies(s string) ([]Policy, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	policies := make([]Policy, 0, len(parts))

	for _, part := range parts {
		p, err := ParsePolicy(part)
		if err != nil {
			return nil, err
		}

		policies = append(policies, p)
	}

	return policies, nil
}

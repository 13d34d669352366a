// Package arbiter merges several producer channels onto one consumer channel.
package arbiter

import (
	"fmt"
	"strings"
)

// Policy selects how the arbiter chooses among valid ports.
type Policy int

// Arbitration policies.
const (
	// FixedPriority grants the valid port with the lowest index.
	FixedPriority Policy = iota

	// RoundRobin grants the first valid port after the one granted last.
	RoundRobin

	// FirstComeFirstServed grants ports in the order they became valid.
	// Ports that became valid on the same tick are ordered by index.
	FirstComeFirstServed
)

var policyNames = map[Policy]string{
	FixedPriority:        "fixed-priority",
	RoundRobin:           "round-robin",
	FirstComeFirstServed: "fcfs",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}

	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts a policy name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	name = strings.TrimSpace(name)
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown arbitration policy %q", name)
}

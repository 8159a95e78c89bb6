package core

import "strings"

// SplitParticipants parses a comma-separated list of payer names, dropping
// empty and whitespace-only entries. A nil result means the payer is the
// sole participant.
func SplitParticipants(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// SplitCountFromNames resolves the effective split count for a raw name
// list: the number of non-empty trimmed names, minimum 1.
func SplitCountFromNames(raw string) int {
	if n := len(SplitParticipants(raw)); n > 0 {
		return n
	}
	return 1
}

// NormalizeSplitCount treats any count below 1 as "no split".
func NormalizeSplitCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// PerPerson divides an amount evenly across n participants, rounding
// half-up to the nearest cent. The sum of the displayed shares may differ
// from the total by a cent per participant; that drift is accepted, not
// corrected.
func PerPerson(amount Money, n int) Money {
	n = NormalizeSplitCount(n)
	if n == 1 {
		return amount
	}
	d := int64(n)
	return Money{Cents: (amount.Cents + d/2) / d}
}

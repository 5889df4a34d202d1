package errors

import (
	"fmt"
	"strings"
)

// SuggestName suggests a known name when an unknown one is referenced.
// It uses Levenshtein distance to find the closest candidate.
func SuggestName(unknown string, known []string) string {
	if len(known) == 0 {
		return ""
	}

	minDistance := -1
	var bestMatch string
	for _, name := range known {
		dist := levenshteinDistance(unknown, name)
		if minDistance < 0 || dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	// Only suggest if the distance is reasonable
	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}
	return fmt.Sprintf("Names in scope: %s", strings.Join(known, ", "))
}

// SuggestMethod suggests the supported methods for a receiver type.
func SuggestMethod(receiverType string) string {
	switch receiverType {
	case "string", "array":
		return "Supported methods: len()"
	default:
		return fmt.Sprintf("Values of type %s have no methods", receiverType)
	}
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1, r2 := []rune(s1), []rune(s2)
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // Deletion
				curr[j-1]+1,    // Insertion
				prev[j-1]+cost, // Substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// formatOutputs renders a VM's outputs list as a comma-separated
// "Results: ..." line, or "No results for this expression" when the
// program produced no Output values.
func formatOutputs(outputs []any) string {
	if len(outputs) == 0 {
		return "No results for this expression"
	}
	parts := make([]string, len(outputs))
	for i, v := range outputs {
		parts[i] = formatOutput(v)
	}
	return "Results: " + strings.Join(parts, ", ")
}

func formatOutput(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return "{NULL}"
	}
}

package main

import (
	"fmt"

	"carddex/internal/grading"
)

func formatPrice(value float64) string {
	if value == 0 {
		return "-"
	}
	return fmt.Sprintf("$%.2f", value)
}

func formatGrade(result *grading.Result) string {
	if result == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", result.Overall)
}

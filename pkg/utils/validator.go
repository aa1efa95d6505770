package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var firNumberRegex = regexp.MustCompile(`^[A-Z0-9]+(/[A-Z0-9]+)*$`)

// ValidateFIRNumber validates a First Information Report number
func ValidateFIRNumber(firNumber string) error {
	if firNumber == "" {
		return fmt.Errorf("FIR number is required")
	}
	if !firNumberRegex.MatchString(strings.ToUpper(firNumber)) {
		return fmt.Errorf("invalid FIR number format: %s", firNumber)
	}
	return nil
}

// ValidateReason validates a transition or closure reason
func ValidateReason(reason string) error {
	if len(reason) > 1000 {
		return fmt.Errorf("reason exceeds maximum length of 1000 characters")
	}
	return nil
}

// SanitizeString removes potentially harmful characters
func SanitizeString(s string) string {
	sanitized := regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
	return sanitized
}

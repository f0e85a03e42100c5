package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Flight numbers look like "AA123" or "VIE4567": a 2-3 letter airline code
// followed by 1-4 digits.
var flightNumberPattern = regexp.MustCompile(`^([A-Z]{2,3})(\d{1,4})$`)

// ParseFlightNumber splits a raw flight designator into airline code and
// numeric part, normalizing spaces and case first.
func ParseFlightNumber(raw string) (string, string, error) {
	cleaned := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	matches := flightNumberPattern.FindStringSubmatch(cleaned)
	if matches == nil {
		return "", "", fmt.Errorf("invalid flight number format: %q", raw)
	}
	return matches[1], matches[2], nil
}

// ValidateFlightDate checks the scheduled date of the insured flight,
// formatted as YYYY-MM-DD.
func ValidateFlightDate(date string) (bool, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return false, fmt.Errorf("flight date must be YYYY-MM-DD: %w", err)
	}
	return true, nil
}

// FlightKey derives the opaque identifier naming one flight instance, used
// for duplicate-insurance checks. Same airline + number + date always yields
// the same key.
func FlightKey(airline, flightNumber, date string) string {
	return fmt.Sprintf("%s%s-%s", strings.ToUpper(airline), flightNumber, date)
}

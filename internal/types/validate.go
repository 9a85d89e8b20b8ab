package types

import "regexp"

var (
	// Agent identifiers: alphanumeric plus dot, underscore and @, so email
	// style names work as client identifiers.
	agentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._@]+$`)

	// E.164-style numbers, optional leading +.
	phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)
)

// ValidAgentID reports whether id is a well-formed agent identifier
func ValidAgentID(id string) bool {
	return id != "" && agentIDPattern.MatchString(id)
}

// ValidPhoneNumber reports whether number is a well-formed dialable number
func ValidPhoneNumber(number string) bool {
	return number != "" && phonePattern.MatchString(number)
}

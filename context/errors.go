package context

import "fmt"

// ParseError is returned by [Parse] and [LoadOverrides] for malformed
// metadata.
type ParseError struct {
	// Kind names the offending field, e.g. "shared", "bus-name", "filesystem".
	Kind string
	// Value is the raw offending token.
	Value string
	// ValidValues lists the accepted enumerators, empty when not applicable.
	ValidValues []string
}

func (e *ParseError) Error() string {
	if len(e.ValidValues) == 0 {
		return fmt.Sprintf("context: invalid %s %q", e.Kind, e.Value)
	}
	return fmt.Sprintf("context: invalid %s %q (valid: %v)", e.Kind, e.Value, e.ValidValues)
}

// unknownName returns a ParseError for an unrecognised enumerator value.
func unknownName(kind, value string, valid []string) *ParseError {
	return &ParseError{Kind: kind, Value: value, ValidValues: valid}
}

// badBusName returns a ParseError for a malformed D-Bus name pattern.
func badBusName(value string) *ParseError {
	return &ParseError{Kind: "bus-name", Value: value}
}

// badFilesystemSpec returns a ParseError for a malformed filesystem path-spec.
func badFilesystemSpec(value string) *ParseError {
	return &ParseError{Kind: "filesystem", Value: value}
}

// badGenericPolicyKey returns a ParseError for a malformed "subsystem.key" pair.
func badGenericPolicyKey(value string) *ParseError {
	return &ParseError{Kind: "generic-policy-key", Value: value}
}

// badPolicyValue returns a ParseError for a CLI-surface policy value starting with "!".
func badPolicyValue(value string) *ParseError {
	return &ParseError{Kind: "policy-value", Value: value}
}

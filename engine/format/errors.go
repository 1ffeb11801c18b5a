package format

import "fmt"

// UnknownFormatterError is raised when a chain names a formatter the
// registry does not carry: fatal in strict mode, a skip-with-warning
// otherwise.
type UnknownFormatterError struct {
	Name string
}

func (e *UnknownFormatterError) Error() string {
	return fmt.Sprintf("UNKNOWN_FORMATTER: %q", e.Name)
}

// InvalidParametersError is raised when a formatter's constant arguments
// fail its validator, or when a formatter is misplaced in its chain.
type InvalidParametersError struct {
	Name    string
	Message string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("INVALID_PARAMETERS: %s: %s", e.Name, e.Message)
}

package service

import "fmt"

// ValidationError reports a request that cannot be served as given, such as
// a missing filter parameter or a reference to a record that does not exist.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func missingParam(name string) error {
	return invalid(name, "%s parameter is required", name)
}

package ortb

// ValidationResult holds the ordered error messages produced by validating one
// auction request. It is immutable once constructed.
type ValidationResult struct {
	errors []string
}

// HasErrors reports whether the validated request was rejected.
func (r ValidationResult) HasErrors() bool {
	return len(r.errors) > 0
}

// Errors returns a copy of the error messages, in the order they were found.
func (r ValidationResult) Errors() []string {
	errs := make([]string, len(r.errors))
	copy(errs, r.errors)
	return errs
}

func validResult() ValidationResult {
	return ValidationResult{}
}

func errorResult(err error) ValidationResult {
	return ValidationResult{errors: []string{err.Error()}}
}

package tailoring

import "fmt"

// ContentFormatError means the reply could not be read as a structured CV.
// The CV returned alongside it carries the raw reply as its content, so the
// run can continue with unstructured text.
type ContentFormatError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ContentFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ContentFormatError) Unwrap() error {
	return e.Cause
}

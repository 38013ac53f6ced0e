package xendit

import "fmt"

// ProviderError is returned for any failed call to the invoice API: transport failures carry
// StatusCode 0, HTTP failures carry the response status and the provider's message when present.
type ProviderError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("xendit %s: %v", e.Op, e.Err)
	case e.Code != "":
		return fmt.Sprintf("xendit %s: status %d: %s: %s", e.Op, e.StatusCode, e.Code, e.Message)
	default:
		return fmt.Sprintf("xendit %s: status %d", e.Op, e.StatusCode)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

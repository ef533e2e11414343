package bridge

import "net/http"

// Result is the outcome of one API call. Exactly one of Data and Error is
// set, except for successful calls without a body where both are nil.
type Result struct {
	StatusCode int
	Data       any
	Error      *APIError
	Header     http.Header
}

// Success reports whether the call succeeded
func (r *Result) Success() bool { return r.Error == nil }

// Err returns the failure as an error, or nil
func (r *Result) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// List returns Data as a list envelope
func (r *Result) List() (*List, bool) {
	l, ok := r.Data.(*List)
	return l, ok
}

// Object returns Data as a typed object
func (r *Result) Object() (Object, bool) {
	o, ok := r.Data.(Object)
	return o, ok
}

// As extracts a typed object from a call's outcome. The call's own error, an
// API failure and an unexpected payload all become the returned error.
func As[T Object](res *Result, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if res.Error != nil {
		return zero, res.Error
	}
	obj, ok := res.Data.(T)
	if !ok {
		return zero, &APIError{
			Kind:       ErrorKindAPI,
			StatusCode: res.StatusCode,
			Message:    "unexpected response payload: " + describe(res.Data),
		}
	}
	return obj, nil
}

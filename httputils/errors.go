package httputils

// FieldError is a validation error reported for a single form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestError is the body of every error response
type RequestError struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

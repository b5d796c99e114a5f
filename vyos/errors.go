package vyos

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// GenericErrorMessage is shown when the configuration API gave no usable reason
const GenericErrorMessage = "the configuration API request failed"

// FieldError is a validation failure reported by the configuration API
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx answer of the configuration API
type APIError struct {
	StatusCode int          `json:"-"`
	Message    string       `json:"message"`
	Fields     []FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("configuration api error %d: %s", e.StatusCode, msg)
}

// errorBody is what the configuration API sends back on failures
type errorBody struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
		apiErr.Fields = eb.Fields
	}
	return apiErr
}

// UserMessage extracts the message shown to the user for a failed call.
// A structured field list is preferred, otherwise a generic message is used.
func UserMessage(err error) (string, []FieldError) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return GenericErrorMessage, nil
	}
	if len(apiErr.Fields) > 0 {
		parts := make([]string, 0, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return strings.Join(parts, "; "), apiErr.Fields
	}
	if apiErr.Message != "" {
		return apiErr.Message, nil
	}
	return GenericErrorMessage, nil
}

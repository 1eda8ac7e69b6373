package serverutils

import "net/http"

// ApiError is an error with an HTTP status attached. Services return it when
// the failure should map to something other than a 500.
type ApiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewBadRequest(message string) *ApiError {
	return &ApiError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

func NewNotFound(message string) *ApiError {
	return &ApiError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

package stripe

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the decoded provider error body plus the HTTP status.
type Error struct {
	Status  int    `json:"-"`
	Type    string `json:"type"`
	Code    string `json:"code"`
	Param   string `json:"param"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (%s, http %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("stripe: %s (http %d)", e.Message, e.Status)
}

// IsNotFound: resource hilang di sisi provider. Di pipeline sync ini selalu
// berarti "lanjut seolah-olah create", bukan hard failure.
func IsNotFound(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == http.StatusNotFound || se.Code == "resource_missing"
}

// IsInvalidRequest: request salah (param invalid dsb). Retry tidak akan
// menolong, tapi tetap lewat jalur retry biasa sampai budget habis.
func IsInvalidRequest(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Type == "invalid_request_error" && se.Status != http.StatusNotFound
}

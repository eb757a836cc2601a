// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
)

// maxBodyBytes bounds request bodies read by DecodeJSON and ReadBody.
const maxBodyBytes = 8 << 20

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON decodes a JSON request body into the target.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(target)
}

// ReadBody reads the whole request body up to the size limit.
func ReadBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// StatusFor maps an error kind to the HTTP status used across the API.
func StatusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindUnresolved, errs.KindNothingToCommit:
		return http.StatusNotFound
	case errs.KindAmbiguous, errs.KindReferential:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807. Details of
// persistence faults are not exposed.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	detail := err.Error()
	var e *errs.Error
	if status == http.StatusInternalServerError || !errors.As(err, &e) {
		detail = ""
	}
	Problem(w, status, titleFor(status, err), detail)
}

func titleFor(status int, err error) string {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return "Validation Failed"
	case errs.KindUnresolved:
		return "Not Found"
	case errs.KindNothingToCommit:
		return "Nothing To Commit"
	case errs.KindAmbiguous:
		return "Ambiguous Identifier"
	case errs.KindReferential:
		return "Product Reference Missing"
	}
	return http.StatusText(status)
}

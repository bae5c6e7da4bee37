package verification

import "errors"

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrExtraction               = errors.New("failed to extract text from url")
	ErrBackendUnavailable       = errors.New("backend unavailable")
	ErrBackendMalformedResponse = errors.New("backend returned a malformed response")
	ErrPersistence              = errors.New("persistence failure")
	ErrUnclassified             = errors.New("unclassified failure")
)

// FailureKind classifies why a backend produced no verdict
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureUnavailable FailureKind = "backend_unavailable"
	FailureMalformed   FailureKind = "backend_malformed_response"
	FailureDisabled    FailureKind = "backend_disabled"
)

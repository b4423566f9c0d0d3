package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

const (
	reasonMissingText          = "missing_text"
	reasonMissingQuestionGroup = "missing_question_or_group"
	reasonOpenAI               = "openai_error"
	reasonStoreQuery           = "store_query_error"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message is the caller-facing text for the error. Upstream failures surface
// the underlying message unchanged.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	switch e.Reason {
	case reasonMissingText:
		return "Missing text"
	case reasonMissingQuestionGroup:
		return "Missing question/group_code"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData indica que a janela não tem amostras; desfecho terminal, não é retentado.
	ErrInsufficientData = errors.New("insufficient data in window")
	ErrBusinessNotFound = errors.New("business not found")
	ErrNoBusinesses     = errors.New("no businesses to process")
	ErrEmptyResponse    = errors.New("empty inference response")
)

// BuildError indica entrada obrigatória ausente para o tipo de insight.
type BuildError struct {
	InsightType InsightType
	Reason      string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s request: %s", e.InsightType, e.Reason)
}

// MissingVideoError é o BuildError de video_analysis sem referência de vídeo.
type MissingVideoError struct {
	InsightType InsightType
}

func (e *MissingVideoError) Error() string {
	return fmt.Sprintf("build %s request: missing video reference", e.InsightType)
}

type InferenceErrorKind string

const (
	InferenceTransient InferenceErrorKind = "transient"
	InferenceExhausted InferenceErrorKind = "exhausted"
	InferencePermanent InferenceErrorKind = "permanent"
)

type InferenceError struct {
	Kind       InferenceErrorKind
	StatusCode int
	Attempts   int
	Err        error
}

func NewTransientError(statusCode int, err error) *InferenceError {
	return &InferenceError{Kind: InferenceTransient, StatusCode: statusCode, Err: err}
}

func NewPermanentError(statusCode int, err error) *InferenceError {
	return &InferenceError{Kind: InferencePermanent, StatusCode: statusCode, Err: err}
}

func (e *InferenceError) Error() string {
	msg := fmt.Sprintf("inference %s failure", e.Kind)
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempt(s)", msg, e.Attempts)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// IsTransient informa se err é uma falha de inferência que pode ser retentada.
func IsTransient(err error) bool {
	var infErr *InferenceError
	return errors.As(err, &infErr) && infErr.Kind == InferenceTransient
}

type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse response: %s: %v", e.Reason, e.Err)
	}
	return "parse response: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write insight: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

type FailureKind string

const (
	FailureNone               FailureKind = ""
	FailureInsufficientData   FailureKind = "insufficient_data"
	FailureBuild              FailureKind = "build_error"
	FailureInferenceExhausted FailureKind = "inference_exhausted"
	FailureInferencePermanent FailureKind = "inference_permanent"
	FailureParse              FailureKind = "parse_error"
	FailureWrite              FailureKind = "write_error"
	FailureCanceled           FailureKind = "canceled"
	FailureInternal           FailureKind = "internal_error"
)

// ClassifyFailure mapeia um erro de unidade para o tipo de falha reportado.
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var (
		buildErr *BuildError
		videoErr *MissingVideoError
		infErr   *InferenceError
		parseErr *ParseError
		writeErr *WriteError
	)

	switch {
	case errors.Is(err, ErrInsufficientData):
		return FailureInsufficientData
	case errors.As(err, &buildErr), errors.As(err, &videoErr):
		return FailureBuild
	case errors.As(err, &infErr):
		if infErr.Kind == InferencePermanent {
			return FailureInferencePermanent
		}
		return FailureInferenceExhausted
	case errors.As(err, &parseErr):
		return FailureParse
	case errors.As(err, &writeErr):
		return FailureWrite
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	}
	return FailureInternal
}

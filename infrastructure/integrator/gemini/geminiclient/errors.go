package geminiclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	pkgerrors "github.com/pkg/errors"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classifyError separa falhas transitórias (rede, 408, 429, 5xx, timeout) das permanentes.
func classifyError(err error, op string) error {
	if err == nil {
		return nil
	}

	wrapped := pkgerrors.Wrap(err, op)

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return domain.NewPermanentError(0, wrapped)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return byStatusCode(apiErr.Code, wrapped)
	}

	var httpErr interface{ HTTPCode() int }
	if errors.As(err, &httpErr) && httpErr.HTTPCode() > 0 {
		return byStatusCode(httpErr.HTTPCode(), wrapped)
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		return byGRPCCode(st.Code(), wrapped)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTransientError(http.StatusRequestTimeout, wrapped)
	}
	if errors.Is(err, context.Canceled) {
		return wrapped
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return domain.NewTransientError(0, wrapped)
	}

	return domain.NewPermanentError(0, wrapped)
}

func byStatusCode(code int, err error) error {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
		return domain.NewTransientError(code, err)
	}
	return domain.NewPermanentError(code, err)
}

func byGRPCCode(code codes.Code, err error) error {
	switch code {
	case codes.Unavailable, codes.Internal, codes.Aborted:
		return domain.NewTransientError(http.StatusServiceUnavailable, err)
	case codes.ResourceExhausted:
		return domain.NewTransientError(http.StatusTooManyRequests, err)
	case codes.DeadlineExceeded:
		return domain.NewTransientError(http.StatusGatewayTimeout, err)
	case codes.Unauthenticated:
		return domain.NewPermanentError(http.StatusUnauthorized, err)
	case codes.PermissionDenied:
		return domain.NewPermanentError(http.StatusForbidden, err)
	case codes.NotFound:
		return domain.NewPermanentError(http.StatusNotFound, err)
	}
	return domain.NewPermanentError(http.StatusBadRequest, err)
}

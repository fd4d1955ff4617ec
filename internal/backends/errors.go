package backends

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ollama/ollama/api"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

// grpcHTTPStatus maps the gRPC codes that mean "the service answered and said
// no" to the HTTP status the REST surface would have returned.
var grpcHTTPStatus = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.FailedPrecondition: http.StatusBadRequest,
	codes.OutOfRange:         http.StatusBadRequest,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.Unimplemented:      http.StatusNotImplemented,
}

// rejectionCode returns the status code of a well-formed backend refusal.
// Transport failures and timeouts are not rejections.
func rejectionCode(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	var serr api.StatusError
	if errors.As(err, &serr) {
		return serr.StatusCode, true
	}
	if st, ok := status.FromError(err); ok {
		if code, ok := grpcHTTPStatus[st.Code()]; ok {
			return code, true
		}
	}
	return 0, false
}

// classify turns a backend call error into a failed result when the backend
// rejected the request, and passes any other error through unchanged so the
// dispatch table reports it as unavailable.
func classify(model string, err error) (*models.ExtractionResult, error) {
	if code, ok := rejectionCode(err); ok {
		return &models.ExtractionResult{
			Success: false,
			Model:   model,
			Error:   "API Error: " + strconv.Itoa(code),
		}, nil
	}
	return nil, err
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "cluster not found",
			},
			want: "cluster not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeUnavailable,
				Message: "list clusters",
				Cause:   errors.New("connection refused"),
			},
			want: "list clusters: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) = false, want true", err)
	}
}

func TestWrap_NilError(t *testing.T) {
	if got := Wrap(nil, ErrCodeInternal, "nothing"); got != nil {
		t.Errorf("Wrap(nil) = %v, want nil", got)
	}
}

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status   int
		detail   string
		wantCode ErrorCode
		wantMsg  string
	}{
		{http.StatusNotFound, "", ErrCodeNotFound, "API Error: 404 Not Found"},
		{http.StatusConflict, "cluster exists", ErrCodeConflict, "API Error: 409 Conflict: cluster exists"},
		{http.StatusUnprocessableEntity, "", ErrCodeValidation, "API Error: 422 Unprocessable Entity"},
		{http.StatusBadRequest, "", ErrCodeValidation, "API Error: 400 Bad Request"},
		{http.StatusForbidden, "", ErrCodeUnauthorized, "API Error: 403 Forbidden"},
		{http.StatusGatewayTimeout, "", ErrCodeTimeout, "API Error: 504 Gateway Timeout"},
		{http.StatusBadGateway, "", ErrCodeUnavailable, "API Error: 502 Bad Gateway"},
		{http.StatusInternalServerError, "", ErrCodeInternal, "API Error: 500 Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := FromHTTPStatus(tt.status, tt.detail)
			if err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", err.Code, tt.wantCode)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
			if err.Status != tt.status {
				t.Errorf("Status = %d, want %d", err.Status, tt.status)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("x"), http.StatusNotFound},
		{"validation", ValidationField("node_count", "must be positive"), http.StatusBadRequest},
		{"unavailable wrapped", fmt.Errorf("fetch: %w", Unavailable("down")), http.StatusBadGateway},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Wrapf(errors.New("dial"), ErrCodeTimeout, "cluster %s", "dev"))

	if !IsTimeout(wrapped) {
		t.Error("IsTimeout() = false, want true")
	}
	if IsNotFound(wrapped) {
		t.Error("IsNotFound() = true, want false")
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode(plain) should be empty")
	}
	if GetField(ValidationField("cluster_name", "required")) != "cluster_name" {
		t.Error("GetField() did not return field")
	}
}

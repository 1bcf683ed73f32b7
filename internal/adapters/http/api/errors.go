package api

import (
	"errors"
	"net/http"

	service "github.com/okian/campusguessr/internal/app"
	"github.com/okian/campusguessr/internal/adapters/repository"
	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

// Error is an API failure tagged with the handler operation and a kind
// that decides the HTTP status.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind != nil:
		return e.Kind.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op and derives its kind from the domain error it carries.
func Wrap(op string, err error) error {
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoLocations):
		return ErrNotFound
	case errors.Is(err, model.ErrGameComplete),
		errors.Is(err, service.ErrAlreadyAssociated),
		errors.Is(err, repository.ErrAlreadyExists):
		return ErrConflict
	case errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, geo.ErrOutsideBounds),
		errors.Is(err, model.ErrRoundMismatch),
		errors.Is(err, service.ErrNotEnoughLocations),
		errors.Is(err, service.ErrGameNotComplete),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidLimit):
		return ErrBadRequest
	default:
		return ErrInternal
	}
}

// status maps an error to its HTTP status and response code.
func status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

package rest

import (
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

// errorStatus maps the error taxonomy onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrNotInviteRoom),
		errors.Is(err, apperror.ErrNotAIRoom),
		errors.Is(err, apperror.ErrRoomFull),
		errors.Is(err, apperror.ErrNotInRoom),
		errors.Is(err, apperror.ErrNicknameTaken),
		errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrInvalidAILevel),
		errors.Is(err, apperror.ErrInvalidPlayer):
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

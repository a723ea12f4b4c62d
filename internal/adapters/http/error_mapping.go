package httpadapter

import (
	"net/http"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPhraseSourceNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrFeatureDisabled):
		return http.StatusNotImplemented
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

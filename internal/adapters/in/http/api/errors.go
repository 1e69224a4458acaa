package api

import (
	"errors"
	"net/http"

	"github.com/bnema/acms/internal/adapters/dto"
	"github.com/bnema/acms/internal/domain"
)

// errUnknownTool is returned for calls naming no registered tool.
var errUnknownTool = errors.New("unknown tool")

// kindOf extends domain.KindOf with adapter-level errors.
func kindOf(err error) domain.ErrorKind {
	if errors.Is(err, errUnknownTool) {
		return domain.KindNotFound
	}
	return domain.KindOf(err)
}

// statusFor maps an error kind onto the HTTP status of a unary call.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindPreconditionFailed:
		return http.StatusConflict
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) dto.ErrorBody {
	body := dto.ErrorBody{
		Kind:    string(kindOf(err)),
		Message: err.Error(),
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
		body.Value = verr.Value
	}
	return body
}

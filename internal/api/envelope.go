package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
	"github.com/visitgevgelija/guide-server/internal/http/response"
)

// EnvelopeVersion is the "v" field of every response.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every operation body in the response envelope.
// Errors become {v, success:false, error:{code,message,details}}; anything
// else becomes {v, success:true, data}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, *response.Envelope:
		return body, nil
	case *APIError:
		code := body.Code
		if code == "" {
			code = statusCodeString(status)
		}
		return response.Envelope{
			V:     EnvelopeVersion,
			Error: &response.ErrorBody{Code: code, Message: body.Message, Details: body.Details},
		}, nil
	case error:
		return response.Envelope{
			V:     EnvelopeVersion,
			Error: &response.ErrorBody{Code: statusCodeString(status), Message: errorMessage(body)},
		}, nil
	}

	return response.Envelope{
		V:       EnvelopeVersion,
		Success: !strings.HasPrefix(status, "4") && !strings.HasPrefix(status, "5"),
		Data:    v,
	}, nil
}

func statusCodeString(status string) string {
	code, _ := strconv.Atoi(status)
	return statusToCode(code)
}

func errorMessage(err error) string {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

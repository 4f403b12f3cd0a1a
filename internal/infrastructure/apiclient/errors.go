package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

// errorBody is the admin API's error envelope.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// classify turns a non-2xx response into a *domain.APIError and closes the body.
func classify(resp *http.Response) error {
	defer resp.Body.Close()

	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = json.Unmarshal(raw, &body)

	kind, sentinel := kindFor(resp.StatusCode)
	return domain.NewAPIError(kind, resp.StatusCode, body.Code, body.Message, sentinel)
}

func kindFor(status int) (domain.ErrorKind, error) {
	switch status {
	case http.StatusUnauthorized:
		return domain.KindAuth, domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.KindAuth, domain.ErrForbidden
	case http.StatusNotFound:
		return domain.KindValidation, domain.ErrNotFound
	case http.StatusConflict:
		return domain.KindValidation, domain.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.KindValidation, domain.ErrInvalidInput
	default:
		return domain.KindNetwork, fmt.Errorf("%w: upstream status %d", domain.ErrTransport, status)
	}
}

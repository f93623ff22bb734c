package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// decodeBody decodes the JSON request body into v. It reports false when
// the body is empty; malformed JSON or mistyped fields are a validation
// error.
func decodeBody(r *http.Request, v any) (bool, error) {
	if r.Body == nil {
		return false, nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, domain.ErrInvalidRequestBody
	}
	return true, nil
}

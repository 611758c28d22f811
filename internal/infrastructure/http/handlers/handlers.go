// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/http/render"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

const maxBodyBytes = 1 << 20

// base carries what every handler group needs to decode, validate and
// answer requests.
type base struct {
	validator *security.ValidationService
	logger    *zap.Logger
}

func (b base) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	render.JSON(w, b.logger, status, v)
}

func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	render.Error(w, r, b.logger, err)
}

// decode reads a JSON body into dst and validates it
func (b base) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := readJSON(w, r, dst); err != nil {
		return err
	}
	return b.validator.Validate(dst)
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.Is(err, io.EOF):
			return errors.NewBadRequestError("Request body is required")
		case stderrors.As(err, &tooLarge):
			return errors.NewBadRequestError("Request body is too large")
		default:
			return errors.NewBadRequestError("Request body is not valid JSON").WithCause(err)
		}
	}
	return nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationErrors([]errors.ValidationError{{
			Field:   name,
			Value:   raw,
			Tag:     "number",
			Message: name + " must be a whole number",
		}})
	}
	return n, nil
}

// queryBool parses an optional boolean query parameter
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.NewValidationErrors([]errors.ValidationError{{
			Field:   name,
			Value:   raw,
			Tag:     "boolean",
			Message: name + " must be true or false",
		}})
	}
	return &v, nil
}

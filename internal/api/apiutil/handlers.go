package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError maps err to an HTTP response. HandlerError and FieldError keep their
// status and message; anything else is logged and reported as a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		if handlerErr.Status >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", handlerErr.Status).Msg(handlerErr.Message)
		}
		http.Error(w, handlerErr.Message, handlerErr.Status)
		return
	}
	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		http.Error(w, fieldErr.Error(), http.StatusBadRequest)
		return
	}
	logger.Error().Err(err).Msg("Unhandled request error")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// RenderHTML renders component into a buffer first so a failed render never
// leaves a half-written page.
func RenderHTML(ctx context.Context, w http.ResponseWriter, component templ.Component, status int) error {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return HandlerError{Status: http.StatusInternalServerError, Message: "Failed to render page", Err: err}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to write response")
	}
	return nil
}

// FloatQuery parses a query parameter. Missing values return fallback; malformed
// ones a FieldError.
func FloatQuery(r *http.Request, name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, FieldError{Field: name, Reason: "must be a number"}
	}
	return v, nil
}

// RequiredFloatQuery is FloatQuery without a fallback.
func RequiredFloatQuery(r *http.Request, name string) (float64, error) {
	if strings.TrimSpace(r.URL.Query().Get(name)) == "" {
		return 0, FieldError{Field: name, Reason: "is required"}
	}
	return FloatQuery(r, name, 0)
}

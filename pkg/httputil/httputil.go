package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validator exposes the shared instance so other packages validate with the same tag names.
func Validator() *validator.Validate {
	return validate
}

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a localized error envelope. messageID doubles as the machine code.
func WriteError(w http.ResponseWriter, r *http.Request, status int, messageID string, data map[string]interface{}) {
	WriteJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    messageID,
		Message: i18n.T(Lang(r), messageID, data),
	}})
}

func Lang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	return r.Header.Get("Accept-Language")
}

// DecodeJSON decodes and validates the body into dst. It writes the 400 response
// itself and reports false when the caller should stop.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteError(w, r, http.StatusBadRequest, i18n.MsgInvalidBody, nil)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
			WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
				Code:    i18n.MsgValidationFailed,
				Message: i18n.T(Lang(r), i18n.MsgValidationFailed, nil),
				Fields:  fields,
			}})
			return false
		}
		WriteError(w, r, http.StatusBadRequest, i18n.MsgInvalidBody, nil)
		return false
	}
	return true
}

func QueryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func QueryFloat(r *http.Request, key string) *float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

func QueryBool(r *http.Request, key string) *bool {
	if v := r.URL.Query().Get(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}

func QueryString(r *http.Request, key string) *string {
	if v, ok := r.URL.Query()[key]; ok && len(v) > 0 {
		s := v[0]
		return &s
	}
	return nil
}

type ListResponse struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page,omitempty"`
	PageSize int         `json:"page_size,omitempty"`
}

package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON body into dst. An empty body decodes to the zero
// value so that handlers with only optional fields accept it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode json body: %w", err)
	}
	return nil
}

// FieldError is a validation failure carrying a machine-readable code.
type FieldError struct {
	Code  string
	Field string
}

func (e *FieldError) Error() string {
	return e.Code + ": " + e.Field
}

// Validator wraps go-playground/validator and translates its first failure
// into a FieldError. Missing required fields share one code; every other
// failure reports invalid_<json field name>.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return &FieldError{Code: "missing_required_fields", Field: fe.Field()}
		}
	}
	fe := fieldErrs[0]
	return &FieldError{Code: "invalid_" + fe.Field(), Field: fe.Field()}
}

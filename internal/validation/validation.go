// Package validation implements two-phase form validation: a structural
// pass over the request struct, then an optional remote re-validation
// for rules only the backing services can check.
package validation

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wm-metals/trade-api/internal/domain"
	"go.uber.org/zap"
)

// Result is the outcome of validating a payload. When Valid is false,
// Errors maps each offending field (json name) to a message.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// RemoteValidator re-checks a payload against rules the structural pass
// cannot know (uniqueness, cross-record constraints). A nil error with a
// non-nil field map means the remote check found problems.
type RemoteValidator interface {
	Validate(ctx context.Context, entity string, payload interface{}) (map[string]string, error)
}

// Validator runs both phases
type Validator struct {
	validate *validator.Validate
	remote   RemoteValidator
	logger   *zap.Logger
}

// New creates a Validator. remote may be nil, in which case only the
// structural phase runs.
func New(remote RemoteValidator, logger *zap.Logger) *Validator {
	return &Validator{
		validate: validator.New(),
		remote:   remote,
		logger:   logger,
	}
}

// Validate sanitizes payload in place, runs the structural rules, and,
// only when those pass, asks the remote validator to confirm. A remote
// failure (transport or otherwise) falls back to the structural verdict
// rather than rejecting the payload.
func (v *Validator) Validate(ctx context.Context, entity string, payload interface{}) Result {
	Sanitize(payload)

	if err := v.validate.Struct(payload); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[jsonFieldName(payload, fe.StructField())] = domain.GetValidationMessage(fe.Tag())
			}
			return Result{Valid: false, Errors: fields}
		}
		return Result{Valid: false, Errors: map[string]string{"_": err.Error()}}
	}

	if v.remote == nil {
		return Result{Valid: true}
	}

	fields, err := v.remote.Validate(ctx, entity, payload)
	if err != nil {
		v.logger.Warn("remote validation unavailable, using structural result",
			zap.String("entity", entity),
			zap.Error(err))
		return Result{Valid: true}
	}
	if len(fields) > 0 {
		return Result{Valid: false, Errors: fields}
	}
	return Result{Valid: true}
}

// Sanitize normalizes the string fields of a struct pointer: whitespace
// is trimmed everywhere and email fields are lowercased. Non-struct or
// non-pointer values are left untouched.
func Sanitize(payload interface{}) {
	rv := reflect.ValueOf(payload)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}

	t := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		lowerEmail := strings.Contains(strings.ToLower(t.Field(i).Name), "email")

		switch f.Kind() {
		case reflect.String:
			s := strings.TrimSpace(f.String())
			if lowerEmail {
				s = strings.ToLower(s)
			}
			f.SetString(s)
		case reflect.Ptr:
			if f.IsNil() || f.Elem().Kind() != reflect.String {
				continue
			}
			s := strings.TrimSpace(f.Elem().String())
			if lowerEmail {
				s = strings.ToLower(s)
			}
			f.Elem().SetString(s)
		}
	}
}

// jsonFieldName maps a struct field to its json tag name so clients see
// the field name they actually sent
func jsonFieldName(payload interface{}, structField string) string {
	t := reflect.TypeOf(payload)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return structField
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("json")
		if tag != "" && tag != "-" {
			if idx := strings.Index(tag, ","); idx != -1 {
				tag = tag[:idx]
			}
			if tag != "" {
				return tag
			}
		}
	}
	return structField
}

package form

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Check runs the struct tags of v and returns one message key per failing
// field, e.g. {"email": "email"}.
func Check(v any) FieldErrors {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		name := fe.Field()
		if _, exists := out[name]; exists {
			continue
		}
		out[name] = fe.Tag()
	}
	return out
}

// Merge folds b into a. Existing keys in a win.
func Merge(a, b FieldErrors) FieldErrors {
	if len(b) == 0 {
		return a
	}
	if a == nil {
		a = FieldErrors{}
	}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			a[k] = v
		}
	}
	return a
}

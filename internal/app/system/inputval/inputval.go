// Package inputval validates decoded request payloads using struct tags.
//
// Request structs declare their schema with go-playground/validator tags:
//
//	type wardInput struct {
//	    WardID   string `json:"ward_id" validate:"required,min=1,max=50"`
//	    WardName string `json:"ward_name" validate:"required,min=2,max=100"`
//	}
//
// Errors are reported against JSON field paths (e.g. "ward_list[1].ward_name").
// Top-level field errors sort before nested ones; within each group the
// order is declaration order, then array order. The validator is stateless
// and never touches storage.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first failure message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All returns every failure message joined with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err converts the first failure into an apierr ValidationError, or nil.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return apierr.Validation(r.Errors[0].Field, r.Errors[0].Message)
}

var (
	once     sync.Once
	validate *validator.Validate

	hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
			return hhmmRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "ymd", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("inputval: register %q: %v", tag, err))
	}
}

// Validate checks s (a struct or pointer to struct) against its tags.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}

	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		res.Errors = append(res.Errors, FieldError{Field: path, Message: message(path, fe)})
	}
	sort.SliceStable(res.Errors, func(i, j int) bool {
		return !isNested(res.Errors[i].Field) && isNested(res.Errors[j].Field)
	})
	return res
}

// AnyProvided reports whether at least one pointer, slice, or map field of
// the struct s is set. Partial-update payloads use pointer fields so an
// absent field can be told apart from a zero value.
func AnyProvided(s any) bool {
	v := reflect.Indirect(reflect.ValueOf(s))
	if v.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		switch f.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
			if !f.IsNil() {
				return true
			}
		}
	}
	return false
}

// IsValidObjectID reports whether id is a 24-char hex Mongo ObjectID.
func IsValidObjectID(id string) bool {
	id = strings.TrimSpace(id)
	if len(id) != 24 {
		return false
	}
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// fieldPath drops the root struct name from a validator namespace:
// "panchayatInput.ward_list[1].ward_name" -> "ward_list[1].ward_name".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func isNested(path string) bool {
	return strings.ContainsAny(path, ".[")
}

func message(path string, fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "notblank":
		return path + " is not allowed to be empty"
	case "min", "gte":
		switch {
		case isText:
			return fmt.Sprintf("%s length must be at least %s characters long", path, fe.Param())
		case isList:
			return fmt.Sprintf("%s must contain at least %s items", path, fe.Param())
		default:
			return fmt.Sprintf("%s must be greater than or equal to %s", path, fe.Param())
		}
	case "max", "lte":
		switch {
		case isText:
			return fmt.Sprintf("%s length must be less than or equal to %s characters long", path, fe.Param())
		case isList:
			return fmt.Sprintf("%s must contain less than or equal to %s items", path, fe.Param())
		default:
			return fmt.Sprintf("%s must be less than or equal to %s", path, fe.Param())
		}
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return path + " must be a valid email"
	case "objectid":
		return path + " must be a valid id"
	case "hhmm":
		return path + " must be in HH:MM 24-hour format"
	case "ymd":
		return path + " must be a date in YYYY-MM-DD format"
	case "unique":
		return path + " contains duplicate values"
	case "dive":
		return path + " is invalid"
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}

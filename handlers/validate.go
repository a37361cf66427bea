package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pocketbase/pocketbase/core"

	"budgetcraft/apperrors"
	"budgetcraft/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("unit", validateUnit)
	_ = v.RegisterValidation("category", validateCategory)
	_ = v.RegisterValidation("budget_status", validateBudgetStatus)
	return v
}

func validateUnit(fl validator.FieldLevel) bool {
	_, ok := models.ParseUnit(fl.Field().String())
	return ok
}

func validateCategory(fl validator.FieldLevel) bool {
	_, ok := models.ParseCategory(fl.Field().String())
	return ok
}

func validateBudgetStatus(fl validator.FieldLevel) bool {
	return models.BudgetStatus(fl.Field().String()).Valid()
}

// decodeBody reads a JSON request body into dst and validates it.
func decodeBody(e *core.RequestEvent, dst any) error {
	dec := json.NewDecoder(e.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}
	return validateStruct(dst)
}

func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}
	out := apperrors.Wrap(apperrors.ErrValidation, err)
	out.Details = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out.Details[fieldPath(fe)] = fieldMessage(fe)
	}
	return out
}

// fieldPath drops the top-level struct name: "bindRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in the format " + fe.Param()
	case "unit":
		return "must be a unit from the catalog list"
	case "category":
		return "must be a known category"
	case "budget_status":
		return "must be a known budget status"
	}
	return "is invalid"
}

// Package service holds the application services sitting between the HTTP
// layer and the catalog, store and billing gateways. Every catalog-facing
// operation is scoped to one shop's credentials, carried per request.
package service

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/tarifflyapp/tariffly-server/internal/errors"
)

// ShopCredentials identifies the shop a request operates on. The access
// token is passed through to the Admin API and never persisted.
type ShopCredentials struct {
	ShopDomain  string
	AccessToken string
}

// Valid reports whether both fields are present.
func (c ShopCredentials) Valid() bool {
	return c.ShopDomain != "" && c.AccessToken != ""
}

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// formatValidationError converts validator errors to domain validation errors.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		// Return first validation error as a domain error
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				return domainerrors.Validationf("%s is required", field)
			case "email":
				return domainerrors.Validationf("%s must be a valid email address", field)
			case "min":
				return domainerrors.Validationf("%s must be at least %s", field, e.Param())
			case "max":
				return domainerrors.Validationf("%s exceeds maximum of %s", field, e.Param())
			case "gt":
				return domainerrors.Validationf("%s must be greater than %s", field, e.Param())
			case "gte":
				return domainerrors.Validationf("%s must be at least %s", field, e.Param())
			case "oneof":
				return domainerrors.Validationf("%s must be one of: %s", field, e.Param())
			case "len":
				return domainerrors.Validationf("%s must be exactly %s characters", field, e.Param())
			default:
				return domainerrors.Validationf("%s is invalid", field)
			}
		}
	}
	return err
}

// requireCredentials rejects requests missing shop identity.
func requireCredentials(creds ShopCredentials) error {
	if creds.ShopDomain == "" {
		return domainerrors.Validation("shop domain is required")
	}
	if creds.AccessToken == "" {
		return domainerrors.Validation("access token is required")
	}
	return nil
}

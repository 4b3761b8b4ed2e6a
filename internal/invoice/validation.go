package invoice

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"invoicedesk/pkg/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so keys read "client.name".
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Decimals validate as numbers so amount fields can use gte=0.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks the fields an invoice needs before it can be saved: the
// client's name and address, a description on every item, and no negative
// item amount, discount or paid amount.
func Validate(inv *models.Invoice) error {
	err := validate.Struct(inv)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		key := fieldKey(fe.Namespace())
		verr.Fields[key] = fieldMessage(key, fe.Tag())
	}
	return verr
}

// fieldKey strips the root struct name from a validator namespace:
// "Invoice.items[0].description" -> "items[0].description".
func fieldKey(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldMessage(key, tag string) string {
	switch {
	case tag == "gte":
		return "Amount must not be negative"
	case key == "client.name":
		return "Client name is required"
	case key == "client.address":
		return "Client address is required"
	case strings.HasSuffix(key, ".description"):
		return "Description is required"
	default:
		return "Field is required"
	}
}

package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	validator "gopkg.in/go-playground/validator.v9"
)

// Validatable should be implemented by config structs that want to provide
// custom validation when the config is loaded.
type Validatable interface {
	Validate() error
}

// ValidateCustomConfig runs the Validate method of a monitor-specific config
// struct, if it has one.  This way the Configure method of monitors is
// guaranteed to receive valid configuration.
func ValidateCustomConfig(conf interface{}) error {
	if v, ok := conf.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// ValidateStruct uses the `validate` struct tags to do standard validation.
// Error messages reference the yaml name of the offending field so that they
// make sense to users looking at their config file.
func ValidateStruct(confStruct interface{}) error {
	validate := validator.New()
	err := validate.Struct(confStruct)
	if err != nil {
		if ves, ok := err.(validator.ValidationErrors); ok {
			var msgs []string
			for _, e := range ves {
				fieldName := yamlNameOfField(e.Field(), confStruct)
				msgs = append(msgs, fmt.Sprintf("Validation error in field '%s': %s", fieldName, e.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Resolves a struct field name to the name given in its yaml tag, recursing
// into embedded structs.  Falls back to the Go field name.
func yamlNameOfField(fieldName string, confStruct interface{}) string {
	if name, ok := lookupYAMLName(fieldName, reflect.Indirect(reflect.ValueOf(confStruct)).Type()); ok {
		return name
	}
	return fieldName
}

func lookupYAMLName(fieldName string, st reflect.Type) (string, bool) {
	if st.Kind() != reflect.Struct {
		return "", false
	}

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if field.Anonymous {
			if name, ok := lookupYAMLName(fieldName, field.Type); ok {
				return name, true
			}
			continue
		}
		if field.Name != fieldName {
			continue
		}
		yamlName := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if yamlName != "" && yamlName != "-" {
			return yamlName, true
		}
		return fieldName, true
	}
	return "", false
}

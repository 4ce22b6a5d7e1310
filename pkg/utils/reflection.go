package utils

import "reflect"

// CloneInterface takes an object and returns a copy of it regardless of
// whether it is really a pointer underneath or not.  It is roughly equivalent
// to the following:
// b = *a  (if 'a' is a pointer)
// b = a (if 'a' is not a pointer)
func CloneInterface(a interface{}) interface{} {
	va := reflect.ValueOf(a)
	indirect := reflect.Indirect(va)
	fresh := reflect.New(indirect.Type())
	fresh.Elem().Set(reflect.ValueOf(indirect.Interface()))
	if va.Kind() == reflect.Ptr {
		return fresh.Interface()
	}
	return fresh.Elem().Interface()
}

// FindFieldWithEmbeddedStructs will look for a field with the given name and
// type, recursing down into embedded structs if there are any.
func FindFieldWithEmbeddedStructs(st interface{}, name string, fieldType reflect.Type) reflect.Value {
	instanceValue := reflect.Indirect(reflect.ValueOf(st))
	fieldValue := instanceValue.FieldByName(name)

	if !fieldValue.IsValid() || fieldValue.Type() != fieldType {
		embeddedValues := make([]reflect.Value, 0)

		for i := 0; i < instanceValue.Type().NumField(); i++ {
			field := instanceValue.Type().Field(i)
			if field.Type.Kind() == reflect.Struct && field.Anonymous && instanceValue.Field(i).CanSet() {
				embeddedValues = append(embeddedValues,
					FindFieldWithEmbeddedStructs(instanceValue.Field(i).Interface(), name, fieldType))
			}
		}
		for _, v := range embeddedValues {
			if v.IsValid() {
				return v
			}
		}
		return reflect.ValueOf(nil)
	}
	return fieldValue
}

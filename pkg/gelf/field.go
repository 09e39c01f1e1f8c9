package gelf

import (
	"fmt"
	"reflect"
	"strconv"
)

// One user-defined value and whether the renderer must quote it
type FieldValue struct {
	Raw   string
	Quote bool
}

// Wraps a typed value following the quoting rule:
// only unsigned integer kinds are emitted as bare JSON numbers.
// Symbolic (fmt.Stringer) values always use their name.
func NewFieldValue(value any) (field FieldValue) {
	field.Quote = true

	switch typed := value.(type) {
	case nil:
		field.Raw = ""
		return
	case string:
		field.Raw = typed
		return
	case fmt.Stringer:
		field.Raw = typed.String()
		return
	case error:
		field.Raw = typed.Error()
		return
	case bool:
		field.Raw = strconv.FormatBool(typed)
		return
	case []byte:
		field.Raw = string(typed)
		return
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		field.Raw = strconv.FormatUint(reflected.Uint(), 10)
		field.Quote = false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		field.Raw = strconv.FormatInt(reflected.Int(), 10)
	case reflect.Float32:
		field.Raw = strconv.FormatFloat(reflected.Float(), 'f', -1, 32)
	case reflect.Float64:
		field.Raw = strconv.FormatFloat(reflected.Float(), 'f', -1, 64)
	case reflect.String:
		field.Raw = reflected.String()
	case reflect.Bool:
		field.Raw = strconv.FormatBool(reflected.Bool())
	default:
		field.Raw = fmt.Sprint(value)
	}
	return
}

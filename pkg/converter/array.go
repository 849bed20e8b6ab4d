// pkg/converter/array.go
package converter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// compositeText renders ARRAY, OBJECT and VARIANT style values as JSON.
// HTML escaping is disabled so characters such as < and & reach the cleaner as written.
func (c *ValueConverter) compositeText(value interface{}) (string, error) {
	val := reflect.ValueOf(value)
	switch val.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
	case reflect.Ptr:
		if val.IsNil() {
			return "", nil
		}
		return c.compositeText(val.Elem().Interface())
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

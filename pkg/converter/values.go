// pkg/converter/values.go
package converter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CellText converts a value scanned from a database into cell text.
// It returns false when the value is missing: NULL, a null marker or an empty string.
func (c *ValueConverter) CellText(value interface{}) (string, bool) {
	if c.isNull(value) {
		return "", false
	}

	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case bool:
		text = strconv.FormatBool(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case int, int8, int16, int32, uint, uint8, uint16, uint32, uint64:
		text = fmt.Sprintf("%d", v)
	case float32:
		text = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		text = c.formatTime(v)
	case [16]byte:
		text = uuid.UUID(v).String()
	case fmt.Stringer:
		text = v.String()
	default:
		composite, err := c.compositeText(v)
		if err != nil {
			c.logger.Debug("Falling back to default formatting",
				zap.String("type", fmt.Sprintf("%T", v)),
				zap.Error(err))
			composite = fmt.Sprintf("%v", v)
		}
		text = composite
	}

	if text == "" || (c.config.BlankAsNull && strings.TrimSpace(text) == "") {
		return "", false
	}
	return text, true
}

// isNull determines if a value should be treated as a missing cell
func (c *ValueConverter) isNull(value interface{}) bool {
	if value == nil {
		return true
	}

	if strVal, ok := value.(string); ok {
		for _, marker := range c.config.NullMarkers {
			if strVal == marker {
				return true
			}
		}
	}

	return false
}

// formatTime renders dates without a time of day using the date layout
func (c *ValueConverter) formatTime(t time.Time) string {
	h, m, s := t.Clock()
	if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.Format(c.config.DateLayout)
	}
	return t.Format(c.config.TimestampLayout)
}

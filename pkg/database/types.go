package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringArray stores a string list as a JSON text column on every driver.
// Scan also accepts the postgres array literal for columns created natively.
type StringArray []string

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return a.parse(string(v))
	case string:
		return a.parse(v)
	default:
		return errors.New("StringArray: unsupported scan type")
	}
}

func (a *StringArray) parse(s string) error {
	switch {
	case s == "":
		*a = StringArray{}
		return nil
	case strings.HasPrefix(s, "["):
		return json.Unmarshal([]byte(s), (*[]string)(a))
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		*a = splitArrayLiteral(s[1 : len(s)-1])
		return nil
	default:
		*a = StringArray{s}
		return nil
	}
}

// splitArrayLiteral splits the body of {a,"b,c",d} honouring quotes and escapes.
func splitArrayLiteral(s string) StringArray {
	out := StringArray{}
	if s == "" {
		return out
	}

	var cur strings.Builder
	quoted, escaped := false, false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (StringArray) GormDataType() string {
	return "text"
}

// NormalizeTags trims, lower-cases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) StringArray {
	seen := make(map[string]struct{}, len(tags))
	out := make(StringArray, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

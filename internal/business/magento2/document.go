package magento2

import (
	"encoding/json"
	"strconv"
)

// Document is a loosely structured record as produced by the upstream COVER
// submission step (decoded JSON objects).
type Document map[string]interface{}

// Doc returns the nested record stored under key.
func (d Document) Doc(key string) (Document, bool) {
	if d == nil {
		return nil, false
	}
	switch v := d[key].(type) {
	case Document:
		return v, v != nil
	case map[string]interface{}:
		return Document(v), v != nil
	default:
		return nil, false
	}
}

// String returns the string stored under key. Integral JSON numbers are
// accepted and rendered without a fraction, so {"error_code": 0} reads as "0".
func (d Document) String(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	switch v := d[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// ParseDocument decodes a JSON object.
func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

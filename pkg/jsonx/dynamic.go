package jsonx

import "github.com/goccy/go-json"

// ToMap converts a value to its generic JSON object form by round tripping it through JSON.
// Values that do not encode to a JSON object are an error.
func ToMap(val any) (map[string]any, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	if err = json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}

package transport

import (
	"fmt"
	"slices"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// encodeParams serializes query parameters the way generated OpenAPI
// clients do: form style, exploded arrays, names in sorted order.
func encodeParams(params map[string]any) (string, error) {
	if len(params) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		value := params[name]
		if value == nil {
			continue
		}
		encoded, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
		if err != nil {
			return "", fmt.Errorf("encode param %q: %w", name, err)
		}
		if encoded != "" {
			parts = append(parts, encoded)
		}
	}
	return strings.Join(parts, "&"), nil
}

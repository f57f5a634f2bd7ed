package vectorstore

// IntValue reads an integer metadata field regardless of how the backend decoded it.
func IntValue(meta map[string]any, key string) (int, bool) {
	switch v := meta[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	default:
		return 0, false
	}
}

// StringValue reads a string metadata field.
func StringValue(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

// Matches reports whether meta carries every key of filter with an equal value.
// Integer kinds compare by value.
func (f Filter) Matches(meta map[string]any) bool {
	for key, want := range f {
		got, ok := meta[key]
		if !ok {
			return false
		}
		if wantInt, isInt := IntValue(f, key); isInt {
			gotInt, ok := IntValue(meta, key)
			if !ok || gotInt != wantInt {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

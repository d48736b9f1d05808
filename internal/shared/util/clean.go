package util

// CleanMap returns a copy of m with nil values removed at every nesting level.
// Nested maps and slices keep their shape; slice order is preserved for the
// remaining elements. The backing store rejects null fields, so records are
// passed through here before every write.
func CleanMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		switch typed := v.(type) {
		case map[string]any:
			out[k] = CleanMap(typed)
		case []any:
			out[k] = cleanSlice(typed)
		default:
			out[k] = v
		}
	}
	return out
}

func cleanSlice(s []any) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		if v == nil {
			continue
		}
		switch typed := v.(type) {
		case map[string]any:
			out = append(out, CleanMap(typed))
		case []any:
			out = append(out, cleanSlice(typed))
		default:
			out = append(out, v)
		}
	}
	return out
}

package getsafe

// String pulls a string out of a loosely typed payload, returning ""
// when the key is absent or holds a different type.
func String(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

package payments

// Provider payloads are not uniformly shaped: depending on the event type the
// checkout reference id shows up under different object paths. The extractors
// below are tried in a fixed priority order and the first non-empty match
// wins.

type referenceExtractor func(payload map[string]any) string

var referenceExtractors = []referenceExtractor{
	func(p map[string]any) string { return digString(p, "data", "object", "payment", "order_id") },
	func(p map[string]any) string { return digString(p, "data", "object", "order", "reference_id") },
	func(p map[string]any) string { return digString(p, "data", "object", "checkout", "reference_id") },
	func(p map[string]any) string { return digString(p, "data", "object", "order", "referenceId") },
}

// ExtractReferenceID pulls the checkout reference id (the pending listing id)
// out of a parsed webhook payload. Returns "" when no known location holds a
// value.
func ExtractReferenceID(payload map[string]any) string {
	for _, extract := range referenceExtractors {
		if ref := extract(payload); ref != "" {
			return ref
		}
	}
	return ""
}

// EventID returns the provider's own event identifier, when present.
func EventID(payload map[string]any) string {
	return digString(payload, "event_id")
}

func digString(m map[string]any, path ...string) string {
	cur := m
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return ""
		}
		if i == len(path)-1 {
			s, _ := v.(string)
			return s
		}
		cur, ok = v.(map[string]any)
		if !ok {
			return ""
		}
	}
	return ""
}

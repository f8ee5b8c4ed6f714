package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Triplet is one (source, target, relation) fact returned by the model.
type Triplet struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

func (t Triplet) valid() bool {
	return strings.TrimSpace(t.Source) != "" && strings.TrimSpace(t.Target) != ""
}

// StripFences removes a markdown code fence the model may wrap its JSON in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseTriplets decodes a model response of the form
// {"triplets": [{"source", "target", "relation"}, ...]}. Entries that are not
// objects with string source and target and a relation key are skipped.
// A payload without a triplets key yields no triplets and no error.
func ParseTriplets(raw string) ([]Triplet, error) {
	var payload struct {
		Triplets []json.RawMessage `json:"triplets"`
	}
	if err := json.Unmarshal([]byte(StripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	out := make([]Triplet, 0, len(payload.Triplets))
	for _, item := range payload.Triplets {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			continue
		}
		if _, ok := fields["relation"]; !ok {
			continue
		}
		var t Triplet
		if err := json.Unmarshal(item, &t); err != nil || !t.valid() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

package launchargs

import "encoding/json"

// Trace captures how each argument layer contributed to one resolved key.
type Trace struct {
	Key      string       `json:"key"`
	Platform Platform     `json:"platform"`
	Layers   []Provenance `json:"layers"`
	Filtered bool         `json:"filtered"`
	Found    bool         `json:"found"`
	Value    any          `json:"value,omitempty"`
}

// Provenance details what a single layer held for a traced key.
type Provenance struct {
	Layer   string `json:"layer"`
	Found   bool   `json:"found"`
	Deleted bool   `json:"deleted,omitempty"`
	Value   any    `json:"value,omitempty"`
}

// Winner returns the name of the layer that decided the key, or "" when no
// layer defines it.
func (t Trace) Winner() string {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer.Layer
		}
	}
	return ""
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

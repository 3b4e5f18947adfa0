package model

// Signal is one explainable metric: the value together with the formula and
// the inputs that produced it.
type Signal struct {
	Name    string             `json:"name" yaml:"name"`
	Value   float64            `json:"value" yaml:"value"`
	Formula string             `json:"formula" yaml:"formula"`
	Inputs  map[string]float64 `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

package domain

import "strings"

// Sample is one sequencing sample discovered on disk.
type Sample struct {
	Name string `json:"name"`
	// Path is the first file found for the sample stem.
	Path string `json:"path"`
}

// SampleList is the sorted, deduplicated set of samples found in a directory.
type SampleList struct {
	Dir     string   `json:"dir"`
	Suffix  string   `json:"suffix"`
	Samples []Sample `json:"samples"`
}

// Names returns the sample names in list order.
func (l SampleList) Names() []string {
	out := make([]string, 0, len(l.Samples))
	for _, s := range l.Samples {
		out = append(out, s.Name)
	}
	return out
}

// SampleStem strips suffix from a file base name. ok is false when the name does
// not carry the suffix or nothing is left once it is removed.
func SampleStem(base, suffix string) (string, bool) {
	if suffix == "" || !strings.HasSuffix(base, suffix) {
		return "", false
	}
	stem := strings.TrimSuffix(base, suffix)
	if stem == "" {
		return "", false
	}
	return stem, true
}

// SamplesRequest selects where samples are discovered and where the list goes.
type SamplesRequest struct {
	Dir    string
	Suffix string
	Out    string
	// WorkflowConfig, when set, also receives the names under its samples key.
	WorkflowConfig string
}

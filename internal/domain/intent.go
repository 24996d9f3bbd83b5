package domain

type Intent string

const (
	IntentFactual    Intent = "factual"
	IntentHistorical Intent = "historical"
	IntentCausal     Intent = "causal"
	IntentMixed      Intent = "mixed"
	IntentUnknown    Intent = "unknown"
)

func ValidIntent(i string) bool {
	switch Intent(i) {
	case IntentFactual, IntentHistorical, IntentCausal, IntentMixed, IntentUnknown:
		return true
	}
	return false
}

// Classification is the result of one intent-classification pass.
// Escalated is true when the keyword heuristic was not confident enough
// and the generative backend made the final call.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Escalated  bool    `json:"escalated"`
}

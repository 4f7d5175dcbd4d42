package agent

import "strings"

// DefaultRiskTerms trigger the compliance disclaimer.
var DefaultRiskTerms = []string{"buy", "sell", "invest", "guarantee", "profit"}

// DefaultDisclaimer is appended when risk vocabulary is detected.
const DefaultDisclaimer = "Disclaimer: This is market information, not financial advice. " +
	"Data may be delayed or simulated. Consult a licensed investment advisor before trading."

// GuardrailOptions configure a Guardrail.
type GuardrailOptions struct {
	// RiskTerms matched case-insensitively as substrings.
	RiskTerms []string
	// Disclaimer appended when a risk term is found.
	Disclaimer string
}

// Guardrail is the deterministic compliance check that runs exactly once per
// turn, after the supervisor finishes. It is a pure function over message
// text: no model, no I/O, no state.
type Guardrail struct {
	terms      []string
	disclaimer string
}

// NewGuardrail creates a guardrail with the default risk vocabulary and
// disclaimer unless overridden.
func NewGuardrail(optFns ...func(o *GuardrailOptions)) *Guardrail {
	opts := GuardrailOptions{
		RiskTerms:  DefaultRiskTerms,
		Disclaimer: DefaultDisclaimer,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Guardrail{terms: opts.RiskTerms, disclaimer: opts.Disclaimer}
}

// Apply inspects text and returns the amended version plus whether a change
// was made. The disclaimer is appended at most once: text that already
// carries it, or contains no risk term, passes through unchanged.
func (g *Guardrail) Apply(text string) (string, bool) {
	if text == "" || strings.Contains(text, g.disclaimer) {
		return text, false
	}
	lower := strings.ToLower(text)
	for _, term := range g.terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return text + "\n\n" + g.disclaimer, true
		}
	}
	return text, false
}

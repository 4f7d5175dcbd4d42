package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardrailAppendsOnRiskTerms(t *testing.T) {
	g := NewGuardrail()

	tests := []struct {
		name    string
		text    string
		amended bool
	}{
		{"buy recommendation", "I recommend you buy this stock.", true},
		{"sell uppercase", "Time to SELL everything.", true},
		{"invest substring", "Long-term investors should reinvest dividends.", true},
		{"guarantee", "Returns are guaranteed to double.", true},
		{"profit", "Net profit rose 12% last quarter.", true},
		{"plain price answer", "JKH last traded at LKR 150.50.", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changed := g.Apply(tt.text)
			assert.Equal(t, tt.amended, changed)
			if tt.amended {
				assert.True(t, strings.HasSuffix(out, DefaultDisclaimer))
				assert.True(t, strings.HasPrefix(out, tt.text))
			} else {
				assert.Equal(t, tt.text, out)
			}
		})
	}
}

func TestGuardrailAppendsExactlyOnce(t *testing.T) {
	g := NewGuardrail()

	out, changed := g.Apply("You should buy now.")
	assert.True(t, changed)

	again, changed := g.Apply(out)
	assert.False(t, changed, "already-disclaimed text must pass through")
	assert.Equal(t, out, again)
	assert.Equal(t, 1, strings.Count(again, DefaultDisclaimer))
}

func TestGuardrailIsPure(t *testing.T) {
	g := NewGuardrail()
	input := "buy buy buy"

	first, _ := g.Apply(input)
	second, _ := g.Apply(input)
	assert.Equal(t, first, second, "same input must always produce the same output")
}

func TestGuardrailCustomTerms(t *testing.T) {
	g := NewGuardrail(func(o *GuardrailOptions) {
		o.RiskTerms = []string{"leverage"}
		o.Disclaimer = "Careful now."
	})

	out, changed := g.Apply("Use leverage wisely.")
	assert.True(t, changed)
	assert.True(t, strings.HasSuffix(out, "Careful now."))

	_, changed = g.Apply("You should buy now.")
	assert.False(t, changed, "default terms are replaced, not merged")
}

package pii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "phone with dashes", text: "call me at 416-555-1234", want: true},
		{name: "phone with dots", text: "416.555.1234 is my number", want: true},
		{name: "phone with spaces", text: "reach 416 555 1234 today", want: true},
		{name: "email", text: "write to jane.doe@example.com please", want: true},
		{name: "bare ten digits", text: "card 1234567890", want: true},
		{name: "nine digit order number", text: "Order 123456789 shipped", want: false},
		{name: "fee code list", text: "OHIP fee codes 100 200 300 apply", want: false},
		{name: "plain question", text: "What are your hours?", want: false},
		{name: "policy question", text: "What is your cancellation policy?", want: false},
		{name: "short numbers", text: "Exams every 1-2 years, glasses in 7 to 10 days", want: false},
		{name: "at sign without domain", text: "meet @ noon", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.text))
		})
	}
}

func TestContainsStrict(t *testing.T) {
	assert.True(t, ContainsStrict("My SIN is 123456789"))
	assert.True(t, ContainsStrict("SIN 123-456-789"))
	assert.True(t, ContainsStrict("call me at 416-555-1234"))
	assert.False(t, ContainsStrict("What are your hours?"))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "[NAME] called", Redact("John Smith called"))
	assert.Equal(t, "[PHONE]", Redact("416-555-1234"))
	assert.Equal(t, "[NAME] at [PHONE] asked about frames", Redact("Mary Jones at 416 555 1234 asked about frames"))

	unchanged := "what are the clinic hours on weekends?"
	assert.Equal(t, unchanged, Redact(unchanged))
}

func TestNew(t *testing.T) {
	for mode, want := range map[string]string{
		"":       "detect",
		"detect": "detect",
		"Redact": "redact",
		"strict": "strict",
		"off":    "off",
	} {
		f, err := New(mode)
		require.NoError(t, err, mode)
		assert.Equal(t, want, f.Mode())
	}

	_, err := New("mask-everything")
	assert.Error(t, err)
}

func TestFilters(t *testing.T) {
	question := "My SIN is 123456789 and phone is 416-555-1234"

	out, refused := DetectPolicy{}.Apply(question)
	assert.True(t, refused)
	assert.Equal(t, question, out)

	out, refused = RedactPolicy{}.Apply(question)
	assert.False(t, refused)
	assert.NotContains(t, out, "416-555-1234")
	assert.Contains(t, out, PhoneToken)

	// the SIN survives redaction so strict mode still refuses
	_, refused = StrictPolicy{}.Apply(question)
	assert.True(t, refused)

	out, refused = StrictPolicy{}.Apply("John Smith called from 416-555-1234")
	assert.False(t, refused)
	assert.Equal(t, "[NAME] called from [PHONE]", out)

	out, refused = Off{}.Apply(question)
	assert.False(t, refused)
	assert.Equal(t, question, out)

	_, refused = DetectPolicy{}.Apply("What are your hours?")
	assert.False(t, refused)

	// a bare 9-digit figure only trips strict mode
	_, refused = DetectPolicy{}.Apply("Order 123456789 shipped")
	assert.False(t, refused)
	_, refused = StrictPolicy{}.Apply("Order 123456789 shipped")
	assert.True(t, refused)
}

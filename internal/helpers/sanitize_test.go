package helpers

import "testing"

func TestSanitizeHTMLStrict_RemovesTagsAndScripts(t *testing.T) {
	input := `<p>Hello <strong>world</strong><script>alert('x')</script></p>`
	got := SanitizeHTMLStrict(input)
	want := "Hello world"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":                   "report.pdf",
		"  <b>report</b>.pdf ":         "report.pdf",
		`C:\Users\clinic\policies.pdf`: "policies.pdf",
		"../../etc/passwd":             "passwd",
		"<script>alert(1)</script>":    DefaultFilename,
		"":                             DefaultFilename,
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

package redact

import (
	"strings"
	"testing"
)

func TestRedactStripsDirectIdentifiers(t *testing.T) {
	r := New()

	in := "Statement of Mr John Smith, DOB: 12/03/1988, NE6 5QB, 07700 900123, john.smith@example.com."
	out := r.Redact(in)

	for _, leaked := range []string{"John Smith", "12/03/1988", "NE6 5QB", "07700 900123", "john.smith@example.com"} {
		if strings.Contains(out, leaked) {
			t.Errorf("identifier %q survived redaction: %s", leaked, out)
		}
	}
	for _, marker := range []string{"[NAME]", "[DOB]", "[POSTCODE]", "[PHONE]", "[EMAIL]"} {
		if !strings.Contains(out, marker) {
			t.Errorf("expected marker %s in %s", marker, out)
		}
	}
}

func TestRedactKeepsEvidentialLanguage(t *testing.T) {
	r := New()

	in := "The custody record shows the interview proceeded without a solicitor."
	if out := r.Redact(in); out != in {
		t.Fatalf("non-identifying text must pass through, got %q", out)
	}
}

func TestRedactEmptyInput(t *testing.T) {
	r := New()
	if out := r.Redact("   "); out != "   " {
		t.Fatalf("whitespace passes through, got %q", out)
	}
}

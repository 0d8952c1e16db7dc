package content

import (
	"strings"
	"testing"
)

func TestRendererBirthday(t *testing.T) {
	t.Parallel()

	r := NewRenderer("Sure Foundation Group of Schools")

	body, err := r.Birthday("Adaeze Obi")
	if err != nil {
		t.Fatalf("Birthday() error = %v", err)
	}

	if body.Subject != "Happy Birthday, Adaeze Obi!" {
		t.Fatalf("Subject = %q", body.Subject)
	}
	if !strings.Contains(body.HTMLBody, "Adaeze Obi") {
		t.Fatalf("HTMLBody missing student name: %s", body.HTMLBody)
	}
	if !strings.Contains(body.HTMLBody, "Sure Foundation Group of Schools") {
		t.Fatalf("HTMLBody missing school name: %s", body.HTMLBody)
	}
	if !strings.Contains(body.TextBody, "Adaeze Obi") {
		t.Fatalf("TextBody missing student name: %s", body.TextBody)
	}
}

func TestRendererBirthdayEmptyNameFallback(t *testing.T) {
	t.Parallel()

	r := NewRenderer("SFGS")

	body, err := r.Birthday("")
	if err != nil {
		t.Fatalf("Birthday() error = %v", err)
	}
	if !strings.Contains(body.HTMLBody, "your child") {
		t.Fatalf("HTMLBody missing fallback name: %s", body.HTMLBody)
	}
}

func TestRendererBirthdayEscapesHTML(t *testing.T) {
	t.Parallel()

	r := NewRenderer("SFGS")

	body, err := r.Birthday(`<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("Birthday() error = %v", err)
	}
	if strings.Contains(body.HTMLBody, "<script>") {
		t.Fatalf("HTMLBody contains unescaped markup: %s", body.HTMLBody)
	}
}

func TestRendererDocumentReady(t *testing.T) {
	t.Parallel()

	r := NewRenderer("SFGS")

	body, err := r.DocumentReady("Chinedu Okafor")
	if err != nil {
		t.Fatalf("DocumentReady() error = %v", err)
	}

	if body.Subject != "New document for Chinedu Okafor" {
		t.Fatalf("Subject = %q", body.Subject)
	}
	if !strings.Contains(body.HTMLBody, "Chinedu Okafor") {
		t.Fatalf("HTMLBody missing student name: %s", body.HTMLBody)
	}
	if !strings.Contains(body.TextBody, "attached to this email") {
		t.Fatalf("TextBody = %s", body.TextBody)
	}
}

func TestNewRendererDefaultSchoolName(t *testing.T) {
	t.Parallel()

	r := NewRenderer("  ")

	body, err := r.Birthday("A")
	if err != nil {
		t.Fatalf("Birthday() error = %v", err)
	}
	if !strings.Contains(body.TextBody, "The School Team") {
		t.Fatalf("TextBody missing default school name: %s", body.TextBody)
	}
}

package content

import (
	"fmt"
	"html/template"
	"strings"
)

var birthdayHTML = template.Must(template.New("birthday").Parse(`
<div style="font-family: Arial, sans-serif; font-size: 16px; color: #222;">
  <p>Dear Parent/Guardian,</p>
  <p>
    We are delighted to celebrate your child's special day!<br>
    <strong>Wishing {{.StudentName}} a wonderful birthday and a fantastic year ahead.</strong>
  </p>
  <p>Best wishes,<br>{{.SchoolName}}</p>
</div>
`))

var documentHTML = template.Must(template.New("document").Parse(`
<div style="font-family: Arial, sans-serif; font-size: 16px; color: #222;">
  <p>Dear Parent/Guardian,</p>
  <p>
    A new document for {{.StudentName}} is attached to this email.<br>
    Please keep it for your records.
  </p>
  <p>Best wishes,<br>{{.SchoolName}}</p>
</div>
`))

// Body is a rendered subject plus HTML and plain-text alternatives.
type Body struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Renderer builds the per-type email bodies.
type Renderer struct {
	schoolName string
}

func NewRenderer(schoolName string) *Renderer {
	schoolName = strings.TrimSpace(schoolName)
	if schoolName == "" {
		schoolName = "The School Team"
	}
	return &Renderer{schoolName: schoolName}
}

func (r *Renderer) Birthday(studentName string) (Body, error) {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		studentName = "your child"
	}

	data := struct {
		StudentName string
		SchoolName  string
	}{StudentName: studentName, SchoolName: r.schoolName}

	var sb strings.Builder
	if err := birthdayHTML.Execute(&sb, data); err != nil {
		return Body{}, fmt.Errorf("failed to render birthday body: %w", err)
	}

	return Body{
		Subject:  fmt.Sprintf("Happy Birthday, %s!", studentName),
		HTMLBody: sb.String(),
		TextBody: fmt.Sprintf(
			"Dear Parent/Guardian,\n\nWishing %s a wonderful birthday and a fantastic year ahead.\n\nBest wishes,\n%s\n",
			studentName, r.schoolName,
		),
	}, nil
}

func (r *Renderer) DocumentReady(studentName string) (Body, error) {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		studentName = "your child"
	}

	data := struct {
		StudentName string
		SchoolName  string
	}{StudentName: studentName, SchoolName: r.schoolName}

	var sb strings.Builder
	if err := documentHTML.Execute(&sb, data); err != nil {
		return Body{}, fmt.Errorf("failed to render document body: %w", err)
	}

	return Body{
		Subject:  fmt.Sprintf("New document for %s", studentName),
		HTMLBody: sb.String(),
		TextBody: fmt.Sprintf(
			"Dear Parent/Guardian,\n\nA new document for %s is attached to this email. Please keep it for your records.\n\nBest wishes,\n%s\n",
			studentName, r.schoolName,
		),
	}, nil
}

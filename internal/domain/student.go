package domain

import "time"

// Student is a school record owning queued messages.
type Student struct {
	ID           string
	MatricNumber string
	Name         string
	ParentEmail1 string
	ParentEmail2 string
	Birthday     *time.Time
	Archived     bool
	CreatedAt    time.Time
}

// GuardianEmails returns the known non-empty guardian addresses, at most two.
func (s *Student) GuardianEmails() []string {
	emails := make([]string, 0, 2)
	if s.ParentEmail1 != "" {
		emails = append(emails, s.ParentEmail1)
	}
	if s.ParentEmail2 != "" {
		emails = append(emails, s.ParentEmail2)
	}
	return emails
}

// MatchStatus reports whether an uploaded file was matched to a student.
type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "MATCHED"
	MatchStatusUnmatched MatchStatus = "UNMATCHED"
)

func (s MatchStatus) String() string { return string(s) }

// UploadedFile records a per-student PDF registered by the upload workflow.
type UploadedFile struct {
	ID                 string
	OriginalFileName   string
	MatricNumberRaw    string
	MatricNumberParsed string
	StudentID          *string
	Status             MatchStatus
	StoragePath        string
	CreatedAt          time.Time
}

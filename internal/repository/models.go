package repository

import (
	"time"

	"github.com/sfgs/mail-dispatch/internal/domain"
)

// MessageModel is the persistence model for the messages table.
type MessageModel struct {
	ID             string             `gorm:"type:uuid;primaryKey"`
	StudentID      *string            `gorm:"type:uuid"`
	MatricNumber   string             `gorm:"type:varchar(50);not null;default:''"`
	RecipientEmail string             `gorm:"type:varchar(255);not null"`
	Type           domain.MessageType `gorm:"type:varchar(20);not null"`
	Status         domain.Status      `gorm:"type:varchar(20);not null"`
	ErrorMessage   *string            `gorm:"type:text"`
	PayloadRef     *string            `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SentAt         *time.Time `gorm:"type:timestamptz"`
}

func (MessageModel) TableName() string {
	return "messages"
}

// StudentModel is the persistence model for the students table.
type StudentModel struct {
	ID           string     `gorm:"type:uuid;primaryKey"`
	MatricNumber string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string     `gorm:"type:varchar(255);not null"`
	ParentEmail1 string     `gorm:"type:varchar(255);not null;default:''"`
	ParentEmail2 string     `gorm:"type:varchar(255);not null;default:''"`
	Birthday     *time.Time `gorm:"type:date"`
	Archived     bool       `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

func (StudentModel) TableName() string {
	return "students"
}

// UploadedFileModel is the persistence model for the uploaded_files table.
type UploadedFileModel struct {
	ID                 string             `gorm:"type:uuid;primaryKey"`
	OriginalFileName   string             `gorm:"type:varchar(255);not null"`
	MatricNumberRaw    string             `gorm:"type:varchar(100);not null"`
	MatricNumberParsed string             `gorm:"type:varchar(100);not null"`
	StudentID          *string            `gorm:"type:uuid"`
	Status             domain.MatchStatus `gorm:"type:varchar(20);not null"`
	StoragePath        string             `gorm:"type:varchar(512);not null"`
	CreatedAt          time.Time
}

func (UploadedFileModel) TableName() string {
	return "uploaded_files"
}

// SettingsModel is the persistence model for the system_settings table.
type SettingsModel struct {
	ID                   string `gorm:"type:uuid;primaryKey"`
	DailyEmailLimit      int    `gorm:"not null;default:100"`
	EmailIntervalMinutes int    `gorm:"not null;default:5"`
	SenderName           string `gorm:"type:varchar(255);not null;default:''"`
	SenderEmail          string `gorm:"type:varchar(255);not null;default:''"`
	UpdatedAt            time.Time
}

func (SettingsModel) TableName() string {
	return "system_settings"
}

func messageModelFromDomain(m *domain.Message) *MessageModel {
	if m == nil {
		return nil
	}

	return &MessageModel{
		ID:             m.ID,
		StudentID:      m.StudentID,
		MatricNumber:   m.MatricNumber,
		RecipientEmail: m.RecipientEmail,
		Type:           m.Type,
		Status:         m.Status,
		ErrorMessage:   m.ErrorMessage,
		PayloadRef:     m.PayloadRef,
		CreatedAt:      m.CreatedAt,
		SentAt:         m.SentAt,
	}
}

func messageModelToDomain(m *MessageModel) *domain.Message {
	if m == nil {
		return nil
	}

	return &domain.Message{
		ID:             m.ID,
		StudentID:      m.StudentID,
		MatricNumber:   m.MatricNumber,
		RecipientEmail: m.RecipientEmail,
		Type:           m.Type,
		Status:         m.Status,
		ErrorMessage:   m.ErrorMessage,
		PayloadRef:     m.PayloadRef,
		CreatedAt:      m.CreatedAt,
		SentAt:         m.SentAt,
	}
}

func studentModelToDomain(m *StudentModel) *domain.Student {
	if m == nil {
		return nil
	}

	return &domain.Student{
		ID:           m.ID,
		MatricNumber: m.MatricNumber,
		Name:         m.Name,
		ParentEmail1: m.ParentEmail1,
		ParentEmail2: m.ParentEmail2,
		Birthday:     m.Birthday,
		Archived:     m.Archived,
		CreatedAt:    m.CreatedAt,
	}
}

func uploadedFileModelFromDomain(f *domain.UploadedFile) *UploadedFileModel {
	if f == nil {
		return nil
	}

	return &UploadedFileModel{
		ID:                 f.ID,
		OriginalFileName:   f.OriginalFileName,
		MatricNumberRaw:    f.MatricNumberRaw,
		MatricNumberParsed: f.MatricNumberParsed,
		StudentID:          f.StudentID,
		Status:             f.Status,
		StoragePath:        f.StoragePath,
		CreatedAt:          f.CreatedAt,
	}
}

func uploadedFileModelToDomain(m *UploadedFileModel) *domain.UploadedFile {
	if m == nil {
		return nil
	}

	return &domain.UploadedFile{
		ID:                 m.ID,
		OriginalFileName:   m.OriginalFileName,
		MatricNumberRaw:    m.MatricNumberRaw,
		MatricNumberParsed: m.MatricNumberParsed,
		StudentID:          m.StudentID,
		Status:             m.Status,
		StoragePath:        m.StoragePath,
		CreatedAt:          m.CreatedAt,
	}
}

func settingsModelToDomain(m *SettingsModel) *domain.Settings {
	if m == nil {
		return nil
	}

	return &domain.Settings{
		ID:                   m.ID,
		DailyEmailLimit:      m.DailyEmailLimit,
		EmailIntervalMinutes: m.EmailIntervalMinutes,
		SenderName:           m.SenderName,
		SenderEmail:          m.SenderEmail,
		UpdatedAt:            m.UpdatedAt,
	}
}

package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/sfgs/mail-dispatch/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_students",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.StudentModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.StudentModel{})
			},
		},
		{
			ID: "000002_create_messages",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.MessageModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_messages_status_created ON messages (status, created_at)`,
					`CREATE INDEX IF NOT EXISTS idx_messages_sent_at ON messages (sent_at) WHERE status = 'SENT'`,
					`CREATE INDEX IF NOT EXISTS idx_messages_student_type ON messages (student_id, type) WHERE student_id IS NOT NULL`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.MessageModel{})
			},
		},
		{
			ID: "000003_create_uploaded_files",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.UploadedFileModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_uploaded_files_student_id ON uploaded_files (student_id) WHERE student_id IS NOT NULL`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.UploadedFileModel{})
			},
		},
		{
			ID: "000004_create_system_settings",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.SettingsModel{}); err != nil {
					return err
				}
				// Seed the singleton row; sender identity is filled from env at startup.
				return tx.Exec(`
					INSERT INTO system_settings (id, daily_email_limit, email_interval_minutes, sender_name, sender_email, updated_at)
					SELECT gen_random_uuid(), 100, 5, '', '', NOW()
					WHERE NOT EXISTS (SELECT 1 FROM system_settings)
				`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.SettingsModel{})
			},
		},
	})

	return m.Migrate()
}

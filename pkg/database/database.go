package database

import (
	"fmt"
	"log"

	"github.com/gravishankar/satify-backend/internal/config"
	"github.com/gravishankar/satify-backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.PracticeSession{},
		&model.QuestionAttempt{},
		&model.Rejection{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// First boot gets a default admin so the review endpoints are reachable;
	// the password must be rotated immediately.
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("satify-admin"), bcrypt.DefaultCost)
		if err == nil {
			db.Create(&model.User{
				Name:     "admin",
				Email:    "admin@satify.local",
				Password: string(hashed),
				Role:     model.Admin,
			})
		}
	}

	return db, nil
}

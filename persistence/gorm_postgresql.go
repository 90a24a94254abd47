// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/bomberman/models"
)

// GormPostgreSQL is the GORM-backed match archive.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormMatch{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveMatch(record *models.MatchRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	row := models.GormMatch{
		RoomID:    record.RoomID,
		Players:   string(players),
		StartedAt: record.StartedAt,
		Duration:  record.Duration,
	}
	return p.db.Create(&row).Error
}

// FinishMatch stamps the duration on the room's most recent open match.
func (p *GormPostgreSQL) FinishMatch(roomID string, durationSeconds int) error {
	var row models.GormMatch
	err := p.db.Where("room_id = ? AND duration = 0", roomID).
		Order("started_at DESC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrRecordNotFound
		}
		return err
	}

	return p.db.Model(&row).Update("duration", durationSeconds).Error
}

func (p *GormPostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	var rows []models.GormMatch
	if err := p.db.Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.MatchRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.MatchRecord{
			RoomID:    row.RoomID,
			StartedAt: row.StartedAt,
			Duration:  row.Duration,
		}
		if err := json.Unmarshal([]byte(row.Players), &rec.Players); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

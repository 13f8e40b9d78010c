package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/batting-order-system/pkg/models"
)

type MySQLDB struct {
	*gorm.DB
}

func NewMySQLDB(host, port, user, password, dbname string) (*MySQLDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, password, host, port, dbname)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.ResetArchive{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &MySQLDB{DB: db}, nil
}

// SaveArchive stores a snapshot taken just before a reset.
func (db *MySQLDB) SaveArchive(archive *models.ResetArchive) error {
	return db.Create(archive).Error
}

// ListArchives returns archived snapshots, newest first.
func (db *MySQLDB) ListArchives(limit int) ([]*models.ResetArchive, error) {
	var archives []*models.ResetArchive
	if err := db.Order("archived_at DESC").Limit(limit).Find(&archives).Error; err != nil {
		return nil, err
	}
	return archives, nil
}

func (db *MySQLDB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

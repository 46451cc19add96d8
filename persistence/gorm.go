// persistence/gorm.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wfunc/lobbyclient/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// GormDatabase 使用GORM的历史记录存储
type GormDatabase struct {
	db *gorm.DB
}

// Open connects to the history database and migrates its tables.
func Open(driver, dsn string) (*GormDatabase, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	if driver == DriverSQLite {
		// sqlite allows one writer; a single connection also keeps :memory: databases shared.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormDatabase{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.JoinRecord{},
	)
}

func (p *GormDatabase) DB() *gorm.DB {
	return p.db
}

func (p *GormDatabase) Transaction(fn func(tx *gorm.DB) error) error {
	return p.db.Transaction(fn)
}

func (p *GormDatabase) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// persistence/interface.go
package persistence

import (
	"errors"

	"gorm.io/gorm"
)

// Database 数据库接口
type Database interface {
	DB() *gorm.DB
	Transaction(fn func(tx *gorm.DB) error) error
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownDriver  = errors.New("unknown database driver")
)

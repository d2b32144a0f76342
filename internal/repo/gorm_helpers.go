package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"project-management-api/internal/domain"
)

// creationOrder 列表统一按创建顺序
func creationOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

func paginate(p domain.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset).Limit(p.Limit)
	}
}

// isDupKey TranslateError 未覆盖的驱动按报错文本兜底
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func translate(err error) error {
	if isDupKey(err) {
		return domain.ErrDuplicateKey
	}
	return err
}

// errNoRows 事务内用于回滚并告知调用方目标不存在
var errNoRows = errors.New("no rows affected")

// deleteTx 在事务中执行级联删除，目标行不存在返回 false
func deleteTx(db *gorm.DB, fn func(tx *gorm.DB) error) (bool, error) {
	err := db.Transaction(fn)
	switch {
	case errors.Is(err, errNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

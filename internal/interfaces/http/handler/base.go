// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"gorm.io/gorm"
)

// isNotFound 判断仓储错误是否为记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

package services

import (
	"vcall-signal-service/config"
)

// dispatchAsync 在后台执行持久化等尽力而为的操作
// 失败只记录日志，绝不影响调用方的实时信令路径
func dispatchAsync(op string, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			config.Error("后台任务失败 [%s]: %v", op, err)
		}
	}()
}

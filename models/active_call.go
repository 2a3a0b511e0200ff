package models

import (
	"sort"
	"strings"
	"sync"
)

// ActiveCallRegistry 记录进行中通话对应的通话记录ID
// 以无序用户对为键：接听成功时写入，挂断时取出并关闭对应的历史记录
type ActiveCallRegistry struct {
	records map[string]uint // pairKey -> 通话记录ID
	mu      sync.Mutex      // 互斥锁保护映射
}

// NewActiveCallRegistry 创建一个新的进行中通话注册表
func NewActiveCallRegistry() *ActiveCallRegistry {
	return &ActiveCallRegistry{
		records: make(map[string]uint),
	}
}

// PairKey 生成无序用户对的键
func PairKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}

// Remember 记住一对用户进行中通话的记录ID
func (a *ActiveCallRegistry) Remember(userA, userB string, recordID uint) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records[PairKey(userA, userB)] = recordID
}

// Take 取出并删除一对用户的记录ID
// 接听持久化尚未完成时记录可能不存在，此时ok为false，调用方按无操作处理
func (a *ActiveCallRegistry) Take(userA, userB string) (uint, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := PairKey(userA, userB)
	recordID, exists := a.records[key]
	if exists {
		delete(a.records, key)
	}
	return recordID, exists
}

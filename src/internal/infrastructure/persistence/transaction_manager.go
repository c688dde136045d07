package persistence

import (
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// GORM TransactionManager 實作
// ===========================

// GORMTransactionManager GORM 事務管理器
//
// 設計原則：
// - 實作 shared.TransactionManager 介面
// - 封裝 gorm 的事務 API，Application Layer 只看到
//   InTransaction(func(ctx) error) 這一個入口
//
// 事務保證：
// 1. fn 返回 nil → 提交
// 2. fn 返回 error → 回滾（帳本的原子單元：餘額與流水要麼都提交，要麼都消失）
// 3. fn panic → 回滾後重新拋出（由調用者處理）
type GORMTransactionManager struct {
	db *gorm.DB
}

// NewGORMTransactionManager 創建事務管理器實例
func NewGORMTransactionManager(db *gorm.DB) shared.TransactionManager {
	return &GORMTransactionManager{db: db}
}

// InTransaction 在單一資料庫事務中執行 fn
//
// 實作說明：
// - gorm 的 db.Transaction 已處理 commit/rollback 與 panic 時的回滾
// - fn 收到的 TransactionContext 封裝了事務中的 *gorm.DB，
//   倉儲透過它參與同一事務
func (m *GORMTransactionManager) InTransaction(fn func(ctx shared.TransactionContext) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMTransactionContext(tx))
	})
}

package loyalty

import (
	"time"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// Enrollment Repository 介面
// ===========================

// EnrollmentRepository 報名倉儲介面
//
// 設計原則：
// 1. 依賴倒置原則（DIP）：Domain Layer 定義介面，Infrastructure Layer 實作
// 2. 事務支持：使用 TransactionContext 封裝事務，避免基礎設施洩漏
// 3. 併發控制：樂觀條件更新（UpdateBalance 帶期望餘額），
//    同一組合的併發異動在提交時衝突，由用例層在新事務中重試；
//    不同組合完全獨立，無共享鎖
//
// 所有權：報名餘額只能透過此介面變更，且只有入點/兌換用例可以調用寫方法
type EnrollmentRepository interface {
	// GetOrCreate 獲取報名記錄，不存在時以餘額 0 創建
	// 實作要求：單一容錯衝突插入（insert-if-absent），
	// 兩筆併發的首次入點只會產生一筆記錄
	// ctx 為 nil 時以 auto-commit 模式執行；入點/兌換路徑應傳入事務 ctx
	GetOrCreate(ctx shared.TransactionContext, customerID CustomerID, programID ProgramID) (*Enrollment, error)

	// Find 查詢報名記錄
	// 返回：找到的報名，或 ErrNotEnrolled
	Find(ctx shared.TransactionContext, customerID CustomerID, programID ProgramID) (*Enrollment, error)

	// UpdateBalance 條件更新餘額（樂觀併發控制）
	//
	// 守護條件：資料庫中的 current_points 仍等於 expectedPoints
	// （即聚合載入後無人動過這一行）；條件不成立時不產生任何變更，
	// 返回 ErrStaleBalance，由調用者在全新事務中重新載入並重試
	//
	// 錯誤：ErrNotEnrolled（記錄不存在）、ErrStaleBalance（併發修改）
	UpdateBalance(ctx shared.TransactionContext, enrollment *Enrollment, expectedPoints PointsAmount) error

	// FindBatch 分頁查詢報名記錄（依 customer_id, program_id 排序）
	// 使用場景：對帳批次遍歷所有報名，禁止一次載入全表
	FindBatch(ctx shared.TransactionContext, offset int, limit int) ([]*Enrollment, error)
}

// ===========================
// Transaction Repository 介面
// ===========================

// TransactionFilter 流水查詢條件
//
// 所有條件皆為可選（nil 表示不過濾）；Limit 為 0 時使用預設值
type TransactionFilter struct {
	CustomerID *CustomerID
	BusinessID *BusinessID
	ProgramID  *ProgramID
	Kind       *TransactionKind
	StartDate  *time.Time // 含（createdAt >= StartDate）
	EndDate    *time.Time // 不含（createdAt < EndDate）
	Limit      int
	Offset     int
}

// 流水查詢分頁上限
const (
	DefaultTransactionPageSize = 50
	MaxTransactionPageSize     = 500
)

// Normalize 驗證並正規化查詢條件（返回副本，不修改原值）
//
// 規則：
// - Limit <= 0 → 預設 50；Limit > 500 → 截斷為 500
// - Offset < 0 → 無效
// - 日期範圍顛倒（EndDate 早於 StartDate）→ 無效
func (f TransactionFilter) Normalize() (TransactionFilter, error) {
	if f.Offset < 0 {
		return TransactionFilter{}, ErrInvalidFilter.WithContext(
			"reason", "offset must not be negative",
			"offset", f.Offset,
		)
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return TransactionFilter{}, ErrInvalidFilter.WithContext(
			"reason", "end date before start date",
		)
	}
	if f.Kind != nil && !f.Kind.IsValid() {
		return TransactionFilter{}, ErrInvalidTransactionKind.WithContext(
			"kind", string(*f.Kind),
		)
	}

	if f.Limit <= 0 {
		f.Limit = DefaultTransactionPageSize
	}
	if f.Limit > MaxTransactionPageSize {
		f.Limit = MaxTransactionPageSize
	}
	return f, nil
}

// TransactionRepository 流水倉儲介面
//
// 帳本紀律：
// - 只追加（Append），沒有 Update/Delete 方法——介面層面強制不可變性
// - 冪等鍵唯一性由資料庫唯一索引保證，Append 在違反時返回
//   ErrDuplicateIdempotencyKey（用例層的事前查詢是快路徑，索引是後盾）
type TransactionRepository interface {
	// Append 追加一筆流水記錄
	// 入點/兌換路徑應傳入事務 ctx（與餘額變更同一事務提交）
	// 錯誤：ErrDuplicateIdempotencyKey（冪等鍵已存在）
	Append(ctx shared.TransactionContext, transaction *PointsTransaction) error

	// FindByIdempotencyKey 依冪等鍵查詢流水
	// 使用場景：重試請求的冪等重放（在事務內查詢）
	// 返回：找到的流水，或 ErrTransactionNotFound
	FindByIdempotencyKey(ctx shared.TransactionContext, key IdempotencyKey) (*PointsTransaction, error)

	// FindByFilter 依條件查詢流水（createdAt 降序，分頁）
	// 注意：調用前必須先通過 filter.Normalize()
	FindByFilter(ctx shared.TransactionContext, filter TransactionFilter) ([]*PointsTransaction, error)

	// SumSignedDeltas 計算某報名的流水帶符號加總
	// （Σ AWARD.points − Σ REDEEM.points）
	// 使用場景：對帳批次驗證帳本一致性不變條件
	SumSignedDeltas(ctx shared.TransactionContext, customerID CustomerID, programID ProgramID) (int64, error)
}

// ===========================
// Repository 錯誤定義
// ===========================

// Repository 相關錯誤代碼
const (
	ErrCodeTransactionNotFound     ErrorCode = "TRANSACTION_NOT_FOUND"
	ErrCodeDuplicateIdempotencyKey ErrorCode = "IDEMPOTENCY_KEY_DUPLICATE"
	ErrCodeStaleBalance            ErrorCode = "ENROLLMENT_CONCURRENT_UPDATE"
	ErrCodeRepositoryError         ErrorCode = "REPOSITORY_ERROR"
)

// Repository 錯誤實例
var (
	// ErrTransactionNotFound 流水記錄不存在
	ErrTransactionNotFound = &DomainError{
		Code:    ErrCodeTransactionNotFound,
		Message: "流水記錄不存在",
	}

	// ErrDuplicateIdempotencyKey 冪等鍵已存在（唯一索引違反）
	ErrDuplicateIdempotencyKey = &DomainError{
		Code:    ErrCodeDuplicateIdempotencyKey,
		Message: "冪等鍵已存在",
	}

	// ErrStaleBalance 樂觀併發衝突：載入後餘額已被其他事務修改
	// 此錯誤只在用例層內部消化（重新載入後重試），不應穿透到調用者
	ErrStaleBalance = &DomainError{
		Code:    ErrCodeStaleBalance,
		Message: "報名餘額已被併發修改",
	}

	// ErrRepositoryError 倉儲操作錯誤（通用，瞬時故障可重試）
	ErrRepositoryError = &DomainError{
		Code:    ErrCodeRepositoryError,
		Message: "倉儲操作失敗",
	}
)

package loyalty

import (
	"time"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
)

// ===========================
// GORM Models
// ===========================

// EnrollmentGORM 報名資料表模型
//
// 設計原則：
// - 僅用於 Infrastructure Layer（不暴露給 Domain Layer）
// - 使用 GORM 標籤定義資料庫結構
// - 與 Domain Enrollment 聚合分離（Mapper 轉換）
//
// 資料庫約束：
// - (customer_id, program_id): 複合主鍵（一個組合恰好一筆記錄，
//   容錯衝突插入的唯一性後盾）
// - current_points: 餘額非負（CHECK 約束，領域層之外的最後防線）
//
// 注意：報名記錄永不刪除，故不使用軟刪除欄位
type EnrollmentGORM struct {
	// 識別欄位（複合主鍵）
	CustomerID string `gorm:"column:customer_id;type:varchar(36);primaryKey"`
	ProgramID  string `gorm:"column:program_id;type:varchar(36);primaryKey"`

	// 餘額
	CurrentPoints int `gorm:"column:current_points;not null;default:0;check:current_points >= 0"`

	// 審計欄位
	EnrolledAt time.Time `gorm:"column:enrolled_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定資料表名稱
func (EnrollmentGORM) TableName() string {
	return "enrollments"
}

// PointsTransactionGORM 流水資料表模型
//
// 資料庫約束：
// - transaction_id: 主鍵（UUID）
// - (customer_id, program_id): 複合索引（單一報名的流水查詢與對帳加總）
// - points > 0：幅度必為正，符號由 kind 決定
// - idempotency_key: 可空的唯一索引（冪等鍵後盾；NULL 不參與唯一性）
//
// 帳本紀律：此表只追加——任何 UPDATE/DELETE 都是缺陷
type PointsTransactionGORM struct {
	TransactionID string `gorm:"column:transaction_id;type:varchar(36);primaryKey"`

	CustomerID string `gorm:"column:customer_id;type:varchar(36);not null;index:idx_tx_enrollment,priority:1"`
	BusinessID string `gorm:"column:business_id;type:varchar(36);not null;index"`
	ProgramID  string `gorm:"column:program_id;type:varchar(36);not null;index:idx_tx_enrollment,priority:2"`

	Kind   string `gorm:"column:kind;type:varchar(10);not null;check:kind IN ('AWARD','REDEEM')"`
	Points int    `gorm:"column:points;not null;check:points > 0"`

	RewardID    *string `gorm:"column:reward_id;type:varchar(36)"`
	Source      string  `gorm:"column:source;type:varchar(64)"`
	Description string  `gorm:"column:description;type:varchar(255)"`

	IdempotencyKey *string `gorm:"column:idempotency_key;type:varchar(128);uniqueIndex"`
	BalanceAfter   int     `gorm:"column:balance_after;not null;check:balance_after >= 0"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

// TableName 指定資料表名稱
func (PointsTransactionGORM) TableName() string {
	return "point_transactions"
}

// ===========================
// Enrollment Mapper Functions
// ===========================

// toDomain 將 GORM 模型轉換為 Domain 聚合
//
// 重要：重建走 ReconstructEnrollment，其內部驗證不變條件，
// 防止損壞資料污染領域層
func (g *EnrollmentGORM) toDomain() (*loyalty.Enrollment, error) {
	customerID, err := loyalty.CustomerIDFromString(g.CustomerID)
	if err != nil {
		return nil, err
	}

	programID, err := loyalty.ProgramIDFromString(g.ProgramID)
	if err != nil {
		return nil, err
	}

	return loyalty.ReconstructEnrollment(
		customerID,
		programID,
		g.CurrentPoints,
		g.EnrolledAt,
		g.UpdatedAt,
	)
}

// enrollmentToGORM 將 Domain 聚合轉換為 GORM 模型
func enrollmentToGORM(enrollment *loyalty.Enrollment) *EnrollmentGORM {
	return &EnrollmentGORM{
		CustomerID:    enrollment.CustomerID().String(),
		ProgramID:     enrollment.ProgramID().String(),
		CurrentPoints: enrollment.CurrentPoints().Value(),
		EnrolledAt:    enrollment.EnrolledAt(),
		UpdatedAt:     enrollment.UpdatedAt(),
	}
}

// ===========================
// PointsTransaction Mapper Functions
// ===========================

// toDomain 將 GORM 模型轉換為 Domain 流水記錄
func (g *PointsTransactionGORM) toDomain() (*loyalty.PointsTransaction, error) {
	transactionID, err := loyalty.TransactionIDFromString(g.TransactionID)
	if err != nil {
		return nil, err
	}

	customerID, err := loyalty.CustomerIDFromString(g.CustomerID)
	if err != nil {
		return nil, err
	}

	businessID, err := loyalty.BusinessIDFromString(g.BusinessID)
	if err != nil {
		return nil, err
	}

	programID, err := loyalty.ProgramIDFromString(g.ProgramID)
	if err != nil {
		return nil, err
	}

	// REDEEM 必有獎勵；AWARD 的 reward_id 為 NULL，對應零值 RewardID
	var rewardID loyalty.RewardID
	if g.RewardID != nil {
		rewardID, err = loyalty.RewardIDFromString(*g.RewardID)
		if err != nil {
			return nil, err
		}
	}

	keyValue := ""
	if g.IdempotencyKey != nil {
		keyValue = *g.IdempotencyKey
	}
	idempotencyKey, err := loyalty.NewIdempotencyKey(keyValue)
	if err != nil {
		return nil, err
	}

	return loyalty.ReconstructTransaction(
		transactionID,
		customerID,
		businessID,
		programID,
		loyalty.TransactionKind(g.Kind),
		g.Points,
		rewardID,
		g.Source,
		g.Description,
		idempotencyKey,
		g.BalanceAfter,
		g.CreatedAt,
	)
}

// transactionToGORM 將 Domain 流水記錄轉換為 GORM 模型
//
// NULL 語義：
// - 零值 RewardID → NULL（僅 AWARD）
// - 空冪等鍵 → NULL（NULL 不參與唯一索引，未提供冪等鍵的流水互不衝突）
func transactionToGORM(transaction *loyalty.PointsTransaction) *PointsTransactionGORM {
	gormModel := &PointsTransactionGORM{
		TransactionID: transaction.TransactionID().String(),
		CustomerID:    transaction.CustomerID().String(),
		BusinessID:    transaction.BusinessID().String(),
		ProgramID:     transaction.ProgramID().String(),
		Kind:          string(transaction.Kind()),
		Points:        transaction.Points().Value(),
		Source:        transaction.Source(),
		Description:   transaction.Description(),
		BalanceAfter:  transaction.BalanceAfter().Value(),
		CreatedAt:     transaction.CreatedAt(),
	}

	if !transaction.RewardID().IsEmpty() {
		rewardID := transaction.RewardID().String()
		gormModel.RewardID = &rewardID
	}

	if !transaction.IdempotencyKey().IsEmpty() {
		key := transaction.IdempotencyKey().Value()
		gormModel.IdempotencyKey = &key
	}

	return gormModel
}

package loyalty

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// GORM Transaction Repository 實作
// ===========================

// GORMTransactionRepository 流水倉儲 GORM 實作
//
// 帳本紀律：此實作只有 INSERT 與 SELECT。
// 介面不提供 Update/Delete，實作也不得繞過
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository 創建倉儲實例
func NewGORMTransactionRepository(db *gorm.DB) loyalty.TransactionRepository {
	return &GORMTransactionRepository{db: db}
}

// getDB 從 TransactionContext 取出事務連接；ctx 為 nil 時使用基礎連接
func (r *GORMTransactionRepository) getDB(ctx shared.TransactionContext) *gorm.DB {
	if ctx != nil {
		if provider, ok := ctx.(interface{ GetDB() *gorm.DB }); ok {
			return provider.GetDB()
		}
	}
	return r.db
}

// Append 追加一筆流水記錄
//
// 冪等鍵唯一索引違反時返回 ErrDuplicateIdempotencyKey：
// 用例層的事前查詢是快路徑，此處的索引是併發下的最後後盾
func (r *GORMTransactionRepository) Append(
	ctx shared.TransactionContext,
	transaction *loyalty.PointsTransaction,
) error {
	db := r.getDB(ctx)

	record := transactionToGORM(transaction)
	if err := db.Create(record).Error; err != nil {
		if isUniqueConstraintError(err) {
			return loyalty.ErrDuplicateIdempotencyKey.WithContext(
				"idempotency_key", transaction.IdempotencyKey().Value(),
			)
		}
		return fmt.Errorf("%w: failed to append transaction: %v",
			loyalty.ErrRepositoryError, err)
	}

	return nil
}

// FindByIdempotencyKey 依冪等鍵查詢流水
func (r *GORMTransactionRepository) FindByIdempotencyKey(
	ctx shared.TransactionContext,
	key loyalty.IdempotencyKey,
) (*loyalty.PointsTransaction, error) {
	db := r.getDB(ctx)

	var record PointsTransactionGORM
	err := db.Where("idempotency_key = ?", key.Value()).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loyalty.ErrTransactionNotFound.WithContext(
				"idempotency_key", key.Value(),
			)
		}
		return nil, fmt.Errorf("%w: failed to find transaction by idempotency key: %v",
			loyalty.ErrRepositoryError, err)
	}

	return record.toDomain()
}

// FindByFilter 依條件查詢流水（createdAt 降序，分頁）
func (r *GORMTransactionRepository) FindByFilter(
	ctx shared.TransactionContext,
	filter loyalty.TransactionFilter,
) ([]*loyalty.PointsTransaction, error) {
	db := r.getDB(ctx)

	query := db.Model(&PointsTransactionGORM{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", filter.CustomerID.String())
	}
	if filter.BusinessID != nil {
		query = query.Where("business_id = ?", filter.BusinessID.String())
	}
	if filter.ProgramID != nil {
		query = query.Where("program_id = ?", filter.ProgramID.String())
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at < ?", *filter.EndDate)
	}

	var records []PointsTransactionGORM
	err := query.Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find transactions: %v",
			loyalty.ErrRepositoryError, err)
	}

	transactions := make([]*loyalty.PointsTransaction, 0, len(records))
	for i := range records {
		transaction, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}

	return transactions, nil
}

// SumSignedDeltas 計算某報名的流水帶符號加總
//
// 加總在資料庫端完成（對帳批次不把全部流水載入記憶體）；
// 以 int64 接收，避免長壽命報名的加總超過 int32
func (r *GORMTransactionRepository) SumSignedDeltas(
	ctx shared.TransactionContext,
	customerID loyalty.CustomerID,
	programID loyalty.ProgramID,
) (int64, error) {
	db := r.getDB(ctx)

	var sum int64
	err := db.Model(&PointsTransactionGORM{}).
		Select("COALESCE(SUM(CASE WHEN kind = 'AWARD' THEN points ELSE -points END), 0)").
		Where("customer_id = ? AND program_id = ?",
			customerID.String(), programID.String()).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("%w: failed to sum transaction deltas: %v",
			loyalty.ErrRepositoryError, err)
	}

	return sum, nil
}

// isUniqueConstraintError 判斷是否為唯一約束違反錯誤
// 支持 PostgreSQL、SQLite、MySQL 的錯誤訊息格式
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "unique failed") ||
		strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "duplicate entry")
}

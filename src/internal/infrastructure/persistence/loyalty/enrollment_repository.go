package loyalty

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// GORM Enrollment Repository 實作
// ===========================

// GORMEnrollmentRepository 報名倉儲 GORM 實作
//
// 設計原則：
// - 實作 Domain Layer 定義的 loyalty.EnrollmentRepository 介面
// - 使用 Mapper 轉換 GORM 模型與 Domain 聚合
// - 支持事務（透過 TransactionContext；nil 表示 auto-commit 讀取）
type GORMEnrollmentRepository struct {
	db *gorm.DB
}

// NewGORMEnrollmentRepository 創建倉儲實例
func NewGORMEnrollmentRepository(db *gorm.DB) loyalty.EnrollmentRepository {
	return &GORMEnrollmentRepository{db: db}
}

// getDB 從 TransactionContext 取出事務連接；ctx 為 nil 時使用基礎連接
func (r *GORMEnrollmentRepository) getDB(ctx shared.TransactionContext) *gorm.DB {
	if ctx != nil {
		if provider, ok := ctx.(interface{ GetDB() *gorm.DB }); ok {
			return provider.GetDB()
		}
	}
	return r.db
}

// GetOrCreate 獲取報名記錄，不存在時以餘額 0 創建
//
// 實作說明：
// 容錯衝突插入（INSERT ... ON CONFLICT DO NOTHING）後重讀。
// 不採用「先查再插」：兩筆併發的首次入點會同時通過查詢、
// 其中一筆插入失敗。DO NOTHING 讓輸家靜默落敗，重讀取得贏家的記錄
func (r *GORMEnrollmentRepository) GetOrCreate(
	ctx shared.TransactionContext,
	customerID loyalty.CustomerID,
	programID loyalty.ProgramID,
) (*loyalty.Enrollment, error) {
	db := r.getDB(ctx)

	enrollment, err := loyalty.NewEnrollment(customerID, programID)
	if err != nil {
		return nil, err
	}

	record := enrollmentToGORM(enrollment)
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: failed to create enrollment: %v",
			loyalty.ErrRepositoryError, result.Error)
	}

	if result.RowsAffected > 0 {
		// 本次調用完成了創建，聚合上的 EnrollmentCreatedEvent 有效
		return enrollment, nil
	}

	// 記錄已存在（本次或併發對手先前創建），重讀資料庫中的狀態
	return r.Find(ctx, customerID, programID)
}

// Find 查詢報名記錄
func (r *GORMEnrollmentRepository) Find(
	ctx shared.TransactionContext,
	customerID loyalty.CustomerID,
	programID loyalty.ProgramID,
) (*loyalty.Enrollment, error) {
	db := r.getDB(ctx)

	var record EnrollmentGORM
	err := db.Where("customer_id = ? AND program_id = ?",
		customerID.String(), programID.String()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loyalty.ErrNotEnrolled.WithContext(
				"customer_id", customerID.String(),
				"program_id", programID.String(),
			)
		}
		return nil, fmt.Errorf("%w: failed to find enrollment: %v",
			loyalty.ErrRepositoryError, err)
	}

	return record.toDomain()
}

// UpdateBalance 條件更新餘額（樂觀併發控制）
//
// 實作說明：
// UPDATE ... WHERE current_points = expectedPoints。
// 影響列數為 0 表示條件不成立：再查一次區分「記錄不存在」
// 與「餘額已被併發修改」，後者由用例層在新事務中重試
func (r *GORMEnrollmentRepository) UpdateBalance(
	ctx shared.TransactionContext,
	enrollment *loyalty.Enrollment,
	expectedPoints loyalty.PointsAmount,
) error {
	db := r.getDB(ctx)

	result := db.Model(&EnrollmentGORM{}).
		Where("customer_id = ? AND program_id = ? AND current_points = ?",
			enrollment.CustomerID().String(),
			enrollment.ProgramID().String(),
			expectedPoints.Value(),
		).
		Updates(map[string]interface{}{
			"current_points": enrollment.CurrentPoints().Value(),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("%w: failed to update balance: %v",
			loyalty.ErrRepositoryError, result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		err := db.Model(&EnrollmentGORM{}).
			Where("customer_id = ? AND program_id = ?",
				enrollment.CustomerID().String(),
				enrollment.ProgramID().String(),
			).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("%w: failed to verify enrollment existence: %v",
				loyalty.ErrRepositoryError, err)
		}
		if count == 0 {
			return loyalty.ErrNotEnrolled.WithContext(
				"customer_id", enrollment.CustomerID().String(),
				"program_id", enrollment.ProgramID().String(),
			)
		}
		return loyalty.ErrStaleBalance.WithContext(
			"customer_id", enrollment.CustomerID().String(),
			"program_id", enrollment.ProgramID().String(),
			"expected_points", expectedPoints.Value(),
		)
	}

	return nil
}

// FindBatch 分頁查詢報名記錄（依 customer_id, program_id 排序）
func (r *GORMEnrollmentRepository) FindBatch(
	ctx shared.TransactionContext,
	offset int,
	limit int,
) ([]*loyalty.Enrollment, error) {
	db := r.getDB(ctx)

	var records []EnrollmentGORM
	err := db.Order("customer_id, program_id").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find enrollment batch: %v",
			loyalty.ErrRepositoryError, err)
	}

	enrollments := make([]*loyalty.Enrollment, 0, len(records))
	for i := range records {
		enrollment, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}

	return enrollments, nil
}

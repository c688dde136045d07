package loyalty

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
)

// ===========================
// ReconcileBalances Use Case
// ===========================

// defaultReconcileBatchSize 對帳批次的預設分頁大小
const defaultReconcileBatchSize = 100

// BalanceMismatch 帳本不一致記錄
//
// 語義：資料完整性警報，不是待修復的工作項——
// 對帳「只發現、不修正」，修正需要人工調查後以補償流水表達
type BalanceMismatch struct {
	CustomerID    string
	ProgramID     string
	CurrentPoints int   // 報名表上的餘額
	LedgerSum     int64 // 流水帶符號加總（Σ AWARD − Σ REDEEM）
}

// ReconcileReport 對帳報告
type ReconcileReport struct {
	Checked    int // 已驗證的報名數
	Mismatches []BalanceMismatch
}

// Consistent 判斷本次對帳是否全數一致
func (r *ReconcileReport) Consistent() bool {
	return len(r.Mismatches) == 0
}

// ReconcileBalancesUseCase 對帳批次 Use Case
//
// 職責：
// 週期性（請求路徑之外）驗證帳本一致性不變條件：
// 每個報名的 current_points 必須等於其流水的帶符號加總
//
// 設計原則：
// - 純讀路徑：逐批分頁遍歷，禁止一次載入全表
// - 發現不一致時記錄警報日誌並納入報告，絕不默默修正
//   （默默修正會掩蓋寫入路徑的 bug，讓帳本失去可信度）
type ReconcileBalancesUseCase struct {
	enrollments  loyalty.EnrollmentRepository
	transactions loyalty.TransactionRepository
	logger       *logrus.Logger
}

// NewReconcileBalancesUseCase 創建 Use Case 實例
func NewReconcileBalancesUseCase(
	enrollments loyalty.EnrollmentRepository,
	transactions loyalty.TransactionRepository,
	logger *logrus.Logger,
) *ReconcileBalancesUseCase {
	return &ReconcileBalancesUseCase{
		enrollments:  enrollments,
		transactions: transactions,
		logger:       resolveLogger(logger),
	}
}

// Execute 執行對帳
//
// 參數：
//   batchSize - 分頁大小（<= 0 時使用預設值 100）
//
// 注意：對帳與線上寫入併發執行時，單一報名的「餘額讀取」與
// 「流水加總」之間可能插入新異動而產生暫時性偏差；
// 排程上應選擇低流量時段執行，或對回報的不一致做二次複核
func (uc *ReconcileBalancesUseCase) Execute(batchSize int) (*ReconcileReport, error) {
	if batchSize <= 0 {
		batchSize = defaultReconcileBatchSize
	}

	report := &ReconcileReport{
		Mismatches: make([]BalanceMismatch, 0),
	}

	for offset := 0; ; offset += batchSize {
		batch, err := uc.enrollments.FindBatch(nil, offset, batchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load enrollment batch at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}

		for _, enrollment := range batch {
			sum, err := uc.transactions.SumSignedDeltas(
				nil,
				enrollment.CustomerID(),
				enrollment.ProgramID(),
			)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to sum transactions for customer %s program %s: %w",
					enrollment.CustomerID().String(),
					enrollment.ProgramID().String(),
					err,
				)
			}

			report.Checked++

			if int64(enrollment.CurrentPoints().Value()) != sum {
				mismatch := BalanceMismatch{
					CustomerID:    enrollment.CustomerID().String(),
					ProgramID:     enrollment.ProgramID().String(),
					CurrentPoints: enrollment.CurrentPoints().Value(),
					LedgerSum:     sum,
				}
				report.Mismatches = append(report.Mismatches, mismatch)

				uc.logger.WithFields(logrus.Fields{
					"module":         "loyalty",
					"customer_id":    mismatch.CustomerID,
					"program_id":     mismatch.ProgramID,
					"current_points": mismatch.CurrentPoints,
					"ledger_sum":     mismatch.LedgerSum,
				}).Error("balance does not match transaction ledger")
			}
		}

		if len(batch) < batchSize {
			break
		}
	}

	return report, nil
}

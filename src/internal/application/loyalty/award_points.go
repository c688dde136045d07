package loyalty

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// AwardPoints Use Case
// ===========================

// maxBalanceRetries 樂觀併發衝突的重試上限
//
// 每次重試都在全新事務中重新載入餘額；超過上限時放棄，
// 返回可重試的倉儲錯誤（調用者帶冪等鍵重試是安全的）
const maxBalanceRetries = 5

// AwardPointsCommand 入點命令
//
// 輸入：
// - CustomerID / BusinessID / ProgramID: UUID 字串
// - Points: 入點數量（必須為正，且不超過政策上限）
// - Source: 來源標籤（如 "QR_SCAN"、"MANUAL"）
// - Description: 入點描述（顯示於流水）
// - IdempotencyKey: 可選的冪等鍵（重試令牌）
type AwardPointsCommand struct {
	CustomerID     string
	BusinessID     string
	ProgramID      string
	Points         int
	Source         string
	Description    string
	IdempotencyKey string
}

// AwardPointsResult 入點結果
type AwardPointsResult struct {
	TransactionID string
	NewBalance    int
	Replayed      bool // true 表示冪等重放（返回首次調用的結果，未產生新異動）
}

// AwardPointsUseCase 入點 Use Case
//
// 職責：
// 1. 驗證輸入（ID 格式、數量正負與上限）
// 2. 驗證方案歸屬（ProgramRegistry，任何變更之前）
// 3. 在單一事務中：冪等重放檢查 → 惰性報名 → 餘額累加 → 追加流水
// 4. 提交後發布事件並派送通知（best-effort）
//
// 原子性保證：
// 餘額變更與流水記錄在同一個資料庫事務中提交——
// 事務提交則兩者都存在，事務失敗則兩者都不存在，沒有中間狀態
//
// 併發安全：
// - 同一 (customer, program) 組合：樂觀條件更新 + 全新事務重試
// - 首次報名競爭：容錯衝突插入（資料庫唯一約束，非應用層鎖）
// - 冪等鍵競爭：事務內查詢為快路徑，唯一索引為後盾
//   （唯一索引違反 → 回滾 → 重試 → 重放首筆結果）
type AwardPointsUseCase struct {
	enrollments  loyalty.EnrollmentRepository
	transactions loyalty.TransactionRepository
	programs     loyalty.ProgramRegistry
	policy       *loyalty.AwardPolicy
	txManager    shared.TransactionManager
	publisher    shared.EventPublisher // 可為 nil
	notifier     loyalty.Notifier      // 可為 nil
	logger       *logrus.Logger
}

// NewAwardPointsUseCase 創建 Use Case 實例
func NewAwardPointsUseCase(
	enrollments loyalty.EnrollmentRepository,
	transactions loyalty.TransactionRepository,
	programs loyalty.ProgramRegistry,
	policy *loyalty.AwardPolicy,
	txManager shared.TransactionManager,
	publisher shared.EventPublisher,
	notifier loyalty.Notifier,
	logger *logrus.Logger,
) *AwardPointsUseCase {
	return &AwardPointsUseCase{
		enrollments:  enrollments,
		transactions: transactions,
		programs:     programs,
		policy:       policy,
		txManager:    txManager,
		publisher:    publisher,
		notifier:     notifier,
		logger:       resolveLogger(logger),
	}
}

// Execute 執行入點
//
// 錯誤處理：
// - ErrInvalidPointsAmount: 數量 <= 0
// - ErrLimitExceeded: 數量超過政策上限
// - ErrProgramNotFound: 方案不存在或不屬於指定商家
// - ErrInvalid*ID: ID 格式無效
// - 其他倉儲錯誤：瞬時故障，帶冪等鍵重試是安全的
func (uc *AwardPointsUseCase) Execute(cmd AwardPointsCommand) (*AwardPointsResult, error) {
	// 1. 驗證並轉換輸入
	customerID, err := loyalty.CustomerIDFromString(cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}

	businessID, err := loyalty.BusinessIDFromString(cmd.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse business ID: %w", err)
	}

	programID, err := loyalty.ProgramIDFromString(cmd.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program ID: %w", err)
	}

	// 2. 驗證數量（任何狀態變更之前；零與負數統一為 InvalidAmount）
	if cmd.Points <= 0 {
		return nil, loyalty.ErrInvalidPointsAmount.WithContext("points", cmd.Points)
	}

	amount, err := loyalty.NewPointsAmount(cmd.Points)
	if err != nil {
		return nil, err
	}

	if err := uc.policy.ValidateDelta(amount); err != nil {
		return nil, err
	}

	key, err := loyalty.NewIdempotencyKey(cmd.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	// 3. 驗證方案歸屬（唯讀檢查，變更之前）
	owner, err := uc.programs.ResolveOwner(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve program owner: %w", err)
	}
	if !owner.Equals(businessID) {
		return nil, loyalty.ErrProgramNotFound.WithContext(
			"program_id", programID.String(),
			"business_id", businessID.String(),
		)
	}

	// 4. 在事務中執行（樂觀衝突時於全新事務重試）
	var result *AwardPointsResult
	var events []shared.DomainEvent

	for attempt := 0; ; attempt++ {
		result = nil
		events = nil

		err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
			// 4a. 冪等重放：同一鍵的首筆流水即是本次的答案
			if !key.IsEmpty() {
				prior, ferr := uc.transactions.FindByIdempotencyKey(ctx, key)
				if ferr == nil {
					result = &AwardPointsResult{
						TransactionID: prior.TransactionID().String(),
						NewBalance:    prior.BalanceAfter().Value(),
						Replayed:      true,
					}
					return nil
				}
				if !errors.Is(ferr, loyalty.ErrTransactionNotFound) {
					return fmt.Errorf("failed to check idempotency key: %w", ferr)
				}
			}

			// 4b. 惰性報名（get-or-create）
			enrollment, gerr := uc.enrollments.GetOrCreate(ctx, customerID, programID)
			if gerr != nil {
				return fmt.Errorf("failed to get or create enrollment: %w", gerr)
			}

			// 4c. 領域命令 + 條件更新
			expected := enrollment.CurrentPoints()
			if aerr := enrollment.Award(amount, cmd.Source, cmd.Description); aerr != nil {
				return aerr
			}
			if uerr := uc.enrollments.UpdateBalance(ctx, enrollment, expected); uerr != nil {
				return uerr
			}

			// 4d. 追加流水（與餘額變更同一事務）
			entry, terr := loyalty.NewAwardTransaction(
				customerID,
				businessID,
				programID,
				amount,
				enrollment.CurrentPoints(),
				cmd.Source,
				cmd.Description,
				key,
			)
			if terr != nil {
				return terr
			}
			if aerr := uc.transactions.Append(ctx, entry); aerr != nil {
				return aerr
			}

			events = enrollment.PullEvents()
			result = &AwardPointsResult{
				TransactionID: entry.TransactionID().String(),
				NewBalance:    enrollment.CurrentPoints().Value(),
			}
			return nil
		})

		if err == nil {
			break
		}

		// 樂觀衝突 / 冪等鍵競爭：整個事務已回滾，於全新事務重試
		// （冪等鍵競爭的重試會走 4a 重放分支）
		retryable := errors.Is(err, loyalty.ErrStaleBalance) ||
			(!key.IsEmpty() && errors.Is(err, loyalty.ErrDuplicateIdempotencyKey))
		if retryable && attempt < maxBalanceRetries {
			continue
		}
		if retryable {
			return nil, loyalty.ErrRepositoryError.WithContext(
				"reason", "retry budget exhausted",
				"attempts", attempt+1,
			)
		}
		return nil, err
	}

	// 5. 提交後副作用（冪等重放不重複發送）
	if !result.Replayed {
		publishEvents(uc.logger, uc.publisher, events)
		notifyCustomer(
			uc.logger,
			uc.notifier,
			customerID,
			loyalty.NotificationPointsAwarded,
			"積分入帳",
			fmt.Sprintf("您獲得 %d 點，目前餘額 %d 點", amount.Value(), result.NewBalance),
			map[string]interface{}{
				"transaction_id": result.TransactionID,
				"program_id":     programID.String(),
				"points":         amount.Value(),
				"new_balance":    result.NewBalance,
				"source":         cmd.Source,
			},
		)
	}

	return result, nil
}

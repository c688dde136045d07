package loyalty

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// RedeemPoints Use Case
// ===========================

// RedeemPointsCommand 兌換命令
//
// 輸入：
// - CustomerID / ProgramID / RewardID: UUID 字串
// - PointsRequired: 兌換所需點數（必須為正）
// - IdempotencyKey: 可選的冪等鍵（重試令牌）
//
// 注意：商家 ID 不在輸入中——兌換發生在方案內，
// 流水上的商家由 ProgramRegistry 解析方案歸屬取得
type RedeemPointsCommand struct {
	CustomerID     string
	ProgramID      string
	RewardID       string
	PointsRequired int
	IdempotencyKey string
}

// RedeemPointsResult 兌換結果
//
// TransactionID 同時充當兌換記錄的憑證 ID
type RedeemPointsResult struct {
	TransactionID string
	NewBalance    int
	Replayed      bool // true 表示冪等重放（返回首次調用的結果，未產生新異動）
}

// RedeemPointsUseCase 兌換 Use Case
//
// 職責：
// 1. 驗證輸入（ID 格式、點數正負與上限）
// 2. 在單一事務中：冪等重放檢查 → 載入報名 → 餘額檢查與扣點 → 追加流水
// 3. 提交後發布事件並派送通知（best-effort）
//
// 不變條件保證：
// - 餘額永不為負：聚合的 Redeem 對載入快照檢查，
//   UpdateBalance 的期望值條件在提交時複核——兩筆併發兌換
//   不可能都基於同一個陳舊餘額成功（後者衝突重試後得到
//   ErrInsufficientPoints），check-then-act 窗口不存在
// - 扣點與流水記錄原子成對（同一事務）
type RedeemPointsUseCase struct {
	enrollments  loyalty.EnrollmentRepository
	transactions loyalty.TransactionRepository
	programs     loyalty.ProgramRegistry
	policy       *loyalty.AwardPolicy
	txManager    shared.TransactionManager
	publisher    shared.EventPublisher // 可為 nil
	notifier     loyalty.Notifier      // 可為 nil
	logger       *logrus.Logger
}

// NewRedeemPointsUseCase 創建 Use Case 實例
func NewRedeemPointsUseCase(
	enrollments loyalty.EnrollmentRepository,
	transactions loyalty.TransactionRepository,
	programs loyalty.ProgramRegistry,
	policy *loyalty.AwardPolicy,
	txManager shared.TransactionManager,
	publisher shared.EventPublisher,
	notifier loyalty.Notifier,
	logger *logrus.Logger,
) *RedeemPointsUseCase {
	return &RedeemPointsUseCase{
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

// Execute 執行兌換
//
// 錯誤處理：
// - ErrInvalidPointsAmount: 點數 <= 0
// - ErrLimitExceeded: 點數超過政策上限
// - ErrNotEnrolled: 客戶尚未報名此方案（沒有餘額記錄）
// - ErrInsufficientPoints: 餘額不足，帳本完全不動
// - ErrProgramNotFound: 方案不存在
// - 其他倉儲錯誤：瞬時故障，帶冪等鍵重試是安全的
func (uc *RedeemPointsUseCase) Execute(cmd RedeemPointsCommand) (*RedeemPointsResult, error) {
	// 1. 驗證並轉換輸入
	customerID, err := loyalty.CustomerIDFromString(cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}

	programID, err := loyalty.ProgramIDFromString(cmd.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program ID: %w", err)
	}

	rewardID, err := loyalty.RewardIDFromString(cmd.RewardID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reward ID: %w", err)
	}

	// 2. 驗證點數（任何狀態變更之前）
	if cmd.PointsRequired <= 0 {
		return nil, loyalty.ErrInvalidPointsAmount.WithContext("points", cmd.PointsRequired)
	}

	amount, err := loyalty.NewPointsAmount(cmd.PointsRequired)
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

	// 3. 解析方案歸屬（流水上的商家欄位）
	businessID, err := uc.programs.ResolveOwner(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve program owner: %w", err)
	}

	// 4. 在事務中執行（樂觀衝突時於全新事務重試）
	var result *RedeemPointsResult
	var events []shared.DomainEvent

	for attempt := 0; ; attempt++ {
		result = nil
		events = nil

		err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
			// 4a. 冪等重放
			if !key.IsEmpty() {
				prior, ferr := uc.transactions.FindByIdempotencyKey(ctx, key)
				if ferr == nil {
					result = &RedeemPointsResult{
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

			// 4b. 載入報名（兌換不做惰性創建：沒報名就沒有點可扣）
			enrollment, ferr := uc.enrollments.Find(ctx, customerID, programID)
			if ferr != nil {
				return ferr
			}

			// 4c. 領域命令（餘額檢查）+ 條件更新
			expected := enrollment.CurrentPoints()
			if rerr := enrollment.Redeem(amount, rewardID); rerr != nil {
				return rerr
			}
			if uerr := uc.enrollments.UpdateBalance(ctx, enrollment, expected); uerr != nil {
				return uerr
			}

			// 4d. 追加流水（與扣點同一事務）
			entry, terr := loyalty.NewRedeemTransaction(
				customerID,
				businessID,
				programID,
				amount,
				enrollment.CurrentPoints(),
				rewardID,
				key,
			)
			if terr != nil {
				return terr
			}
			if aerr := uc.transactions.Append(ctx, entry); aerr != nil {
				return aerr
			}

			events = enrollment.PullEvents()
			result = &RedeemPointsResult{
				TransactionID: entry.TransactionID().String(),
				NewBalance:    enrollment.CurrentPoints().Value(),
			}
			return nil
		})

		if err == nil {
			break
		}

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
			loyalty.NotificationPointsRedeemed,
			"積分兌換成功",
			fmt.Sprintf("您使用 %d 點完成兌換，目前餘額 %d 點", amount.Value(), result.NewBalance),
			map[string]interface{}{
				"transaction_id": result.TransactionID,
				"program_id":     programID.String(),
				"reward_id":      rewardID.String(),
				"points":         amount.Value(),
				"new_balance":    result.NewBalance,
			},
		)
	}

	return result, nil
}

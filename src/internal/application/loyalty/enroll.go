package loyalty

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// EnrollCustomer Use Case
// ===========================

// EnrollCustomerCommand 報名命令
type EnrollCustomerCommand struct {
	CustomerID string
	ProgramID  string
}

// EnrollCustomerResult 報名結果
type EnrollCustomerResult struct {
	CustomerID    string
	ProgramID     string
	CurrentPoints int
	EnrolledAt    time.Time
	Created       bool // false 表示該組合已存在（返回既有報名，非錯誤）
}

// EnrollCustomerUseCase 顯式報名 Use Case
//
// 職責：
// 1. 驗證輸入（ID 格式）
// 2. 以容錯衝突插入創建報名（在事務中）
// 3. 返回結果（既有報名直接返回，與首次入點的惰性創建同語義）
//
// 並發安全：
// - 不使用 check-then-insert 模式（避免競爭條件）
// - 依賴資料庫 UNIQUE 約束保證 (customer, program) 唯一性
type EnrollCustomerUseCase struct {
	enrollments loyalty.EnrollmentRepository
	txManager   shared.TransactionManager
	publisher   shared.EventPublisher // 可為 nil
	logger      *logrus.Logger
}

// NewEnrollCustomerUseCase 創建 Use Case 實例
func NewEnrollCustomerUseCase(
	enrollments loyalty.EnrollmentRepository,
	txManager shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *logrus.Logger,
) *EnrollCustomerUseCase {
	return &EnrollCustomerUseCase{
		enrollments: enrollments,
		txManager:   txManager,
		publisher:   publisher,
		logger:      resolveLogger(logger),
	}
}

// Execute 執行報名
//
// 錯誤處理：
// - ErrInvalidCustomerID / ErrInvalidProgramID: ID 格式無效
// - 其他倉儲錯誤：添加上下文後返回
func (uc *EnrollCustomerUseCase) Execute(cmd EnrollCustomerCommand) (*EnrollCustomerResult, error) {
	// 1. 驗證並轉換輸入
	customerID, err := loyalty.CustomerIDFromString(cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}

	programID, err := loyalty.ProgramIDFromString(cmd.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program ID: %w", err)
	}

	// 2. 在事務中 get-or-create
	var result *EnrollCustomerResult
	var events []shared.DomainEvent

	err = uc.txManager.InTransaction(func(ctx shared.TransactionContext) error {
		enrollment, gerr := uc.enrollments.GetOrCreate(ctx, customerID, programID)
		if gerr != nil {
			return fmt.Errorf("failed to get or create enrollment: %w", gerr)
		}

		// 既有報名重建時不帶事件；有事件即表示本次新建
		events = enrollment.PullEvents()
		result = &EnrollCustomerResult{
			CustomerID:    enrollment.CustomerID().String(),
			ProgramID:     enrollment.ProgramID().String(),
			CurrentPoints: enrollment.CurrentPoints().Value(),
			EnrolledAt:    enrollment.EnrolledAt(),
			Created:       len(events) > 0,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 3. 提交後發布事件（best-effort）
	publishEvents(uc.logger, uc.publisher, events)

	return result, nil
}

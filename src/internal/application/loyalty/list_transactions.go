package loyalty

import (
	"fmt"
	"time"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
)

// ===========================
// ListTransactions Use Case
// ===========================

// ListTransactionsQuery 流水查詢
//
// 所有過濾條件皆為可選（空字串 / nil 表示不過濾）
type ListTransactionsQuery struct {
	CustomerID string
	BusinessID string
	ProgramID  string
	Kind       string // "AWARD" / "REDEEM"
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// TransactionDTO 流水記錄（查詢結果）
type TransactionDTO struct {
	TransactionID string
	CustomerID    string
	BusinessID    string
	ProgramID     string
	Kind          string
	Points        int
	SignedDelta   int
	RewardID      string // AWARD 流水為空字串
	Source        string
	Description   string
	BalanceAfter  int
	CreatedAt     time.Time
}

// ListTransactionsUseCase 流水查詢 Use Case
//
// 純讀路徑：不開啟事務（auto-commit 查詢），不引入新的不變條件
type ListTransactionsUseCase struct {
	transactions loyalty.TransactionRepository
}

// NewListTransactionsUseCase 創建 Use Case 實例
func NewListTransactionsUseCase(transactions loyalty.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{
		transactions: transactions,
	}
}

// Execute 執行流水查詢
//
// 執行流程：
// 1. 解析過濾條件（ID 格式、流水類型）
// 2. 正規化分頁（預設 50 筆，上限 500 筆）
// 3. 查詢並轉換為 DTO（createdAt 降序）
//
// 錯誤處理：
// - ErrInvalid*ID / ErrInvalidTransactionKind / ErrInvalidFilter: 條件無效
// - 其他倉儲錯誤：添加上下文後返回
func (uc *ListTransactionsUseCase) Execute(query ListTransactionsQuery) ([]TransactionDTO, error) {
	filter, err := uc.buildFilter(query)
	if err != nil {
		return nil, err
	}

	entries, err := uc.transactions.FindByFilter(nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	dtos := make([]TransactionDTO, 0, len(entries))
	for _, entry := range entries {
		dto := TransactionDTO{
			TransactionID: entry.TransactionID().String(),
			CustomerID:    entry.CustomerID().String(),
			BusinessID:    entry.BusinessID().String(),
			ProgramID:     entry.ProgramID().String(),
			Kind:          string(entry.Kind()),
			Points:        entry.Points().Value(),
			SignedDelta:   entry.SignedDelta(),
			Source:        entry.Source(),
			Description:   entry.Description(),
			BalanceAfter:  entry.BalanceAfter().Value(),
			CreatedAt:     entry.CreatedAt(),
		}
		if !entry.RewardID().IsEmpty() {
			dto.RewardID = entry.RewardID().String()
		}
		dtos = append(dtos, dto)
	}

	return dtos, nil
}

// buildFilter 將查詢輸入轉換為已驗證的倉儲過濾條件（私有輔助方法）
func (uc *ListTransactionsUseCase) buildFilter(query ListTransactionsQuery) (loyalty.TransactionFilter, error) {
	filter := loyalty.TransactionFilter{
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}

	if query.CustomerID != "" {
		customerID, err := loyalty.CustomerIDFromString(query.CustomerID)
		if err != nil {
			return loyalty.TransactionFilter{}, fmt.Errorf("failed to parse customer ID: %w", err)
		}
		filter.CustomerID = &customerID
	}

	if query.BusinessID != "" {
		businessID, err := loyalty.BusinessIDFromString(query.BusinessID)
		if err != nil {
			return loyalty.TransactionFilter{}, fmt.Errorf("failed to parse business ID: %w", err)
		}
		filter.BusinessID = &businessID
	}

	if query.ProgramID != "" {
		programID, err := loyalty.ProgramIDFromString(query.ProgramID)
		if err != nil {
			return loyalty.TransactionFilter{}, fmt.Errorf("failed to parse program ID: %w", err)
		}
		filter.ProgramID = &programID
	}

	if query.Kind != "" {
		kind, err := loyalty.ParseTransactionKind(query.Kind)
		if err != nil {
			return loyalty.TransactionFilter{}, err
		}
		filter.Kind = &kind
	}

	return filter.Normalize()
}

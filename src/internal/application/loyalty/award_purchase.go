package loyalty

import (
	"github.com/shopspring/decimal"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
)

// ===========================
// AwardPurchase Use Case
// ===========================

// AwardPurchaseCommand 消費入點命令
//
// 使用場景：QR 掃描消費憑證——入點數量不是直接給定，
// 而是由消費金額與商家設定的轉換率換算
type AwardPurchaseCommand struct {
	CustomerID     string
	BusinessID     string
	ProgramID      string
	PurchaseAmount decimal.Decimal // 消費金額（精確十進位）
	ConversionRate int             // 每 N 元 1 點
	Source         string
	Description    string
	IdempotencyKey string
}

// AwardPurchaseUseCase 消費入點 Use Case
//
// 職責：
// 1. 驗證轉換率、換算積分（floor(金額 / 轉換率)）
// 2. 委派給 AwardPointsUseCase（共用驗證、事務、冪等與副作用流程）
//
// 設計原則：
// - 組合優於重複：換算只是入點的前置步驟，不複製事務編排
type AwardPurchaseUseCase struct {
	converter *loyalty.PointsConversionService
	award     *AwardPointsUseCase
}

// NewAwardPurchaseUseCase 創建 Use Case 實例
func NewAwardPurchaseUseCase(
	converter *loyalty.PointsConversionService,
	award *AwardPointsUseCase,
) *AwardPurchaseUseCase {
	return &AwardPurchaseUseCase{
		converter: converter,
		award:     award,
	}
}

// Execute 執行消費入點
//
// 錯誤處理：
// - ErrInvalidConversionRate: 轉換率不在 1-1000 之間
// - ErrInvalidPointsAmount: 換算結果為 0 點（消費金額不足一點）
// - 其餘同 AwardPointsUseCase.Execute
func (uc *AwardPurchaseUseCase) Execute(cmd AwardPurchaseCommand) (*AwardPointsResult, error) {
	// 1. 驗證轉換率
	rate, err := loyalty.NewConversionRate(cmd.ConversionRate)
	if err != nil {
		return nil, err
	}

	// 2. 換算積分
	points, err := uc.converter.CalculateFromAmount(cmd.PurchaseAmount, rate)
	if err != nil {
		return nil, err
	}

	// 3. 委派入點（0 點在此被拒絕：不足一點的消費不產生流水）
	return uc.award.Execute(AwardPointsCommand{
		CustomerID:     cmd.CustomerID,
		BusinessID:     cmd.BusinessID,
		ProgramID:      cmd.ProgramID,
		Points:         points.Value(),
		Source:         cmd.Source,
		Description:    cmd.Description,
		IdempotencyKey: cmd.IdempotencyKey,
	})
}

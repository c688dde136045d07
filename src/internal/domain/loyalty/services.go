package loyalty

import (
	"github.com/shopspring/decimal"
)

// ===========================
// AwardPolicy 領域服務
// ===========================

// AwardPolicy 入點政策領域服務
//
// 設計原則：
// 1. Domain Service 封裝不屬於任何單一實體/值對象的業務規則
// 2. 無狀態（建構後不可變）：可安全地在多個 goroutine 中共享
//
// 為什麼不放在 PointsAmount：
// - 上限是部署配置（不同環境不同），不是積分數量的內在性質
// - PointsAmount 允許零（餘額可以為零），但異動幅度必須為正——
//   「幅度合法性」是入點/兌換操作的規則，不是數量本身的規則
type AwardPolicy struct {
	maxPerTransaction PointsAmount
}

// DefaultMaxPointsPerTransaction 單次異動的預設上限
// 防止誤操作或濫用在一次調用中污染帳本
const DefaultMaxPointsPerTransaction = 10000

// NewAwardPolicy 建構函數
//
// 參數：
//   maxPerTransaction - 單次異動上限（<= 0 時使用預設值）
func NewAwardPolicy(maxPerTransaction int) *AwardPolicy {
	if maxPerTransaction <= 0 {
		maxPerTransaction = DefaultMaxPointsPerTransaction
	}
	return &AwardPolicy{
		maxPerTransaction: newPointsAmountUnchecked(maxPerTransaction),
	}
}

// MaxPerTransaction 獲取單次異動上限
func (p *AwardPolicy) MaxPerTransaction() PointsAmount {
	return p.maxPerTransaction
}

// ValidateDelta 驗證一次入點/兌換的異動幅度
//
// 業務規則：
// - 幅度必須為正（零或負 → ErrInvalidPointsAmount）
// - 幅度不得超過上限（→ ErrLimitExceeded）
//
// 在任何狀態變更之前調用（驗證失敗 = 帳本完全不動）
func (p *AwardPolicy) ValidateDelta(amount PointsAmount) error {
	if amount.IsZero() {
		return ErrInvalidPointsAmount.WithContext(
			"points", amount.Value(),
		)
	}
	if amount.GreaterThan(p.maxPerTransaction) {
		return ErrLimitExceeded.WithContext(
			"points", amount.Value(),
			"max", p.maxPerTransaction.Value(),
		)
	}
	return nil
}

// ===========================
// PointsConversionService 領域服務
// ===========================

// PointsConversionService 消費金額轉積分領域服務
//
// 使用場景：QR 掃描消費憑證時，依商家設定的轉換率換算入點數量
//
// 為什麼需要 Domain Service：
// - ConversionRate 不應該依賴 PointsAmount（值對象應是葉節點）
// - 協調兩個值對象的計算邏輯屬於領域服務的範疇
type PointsConversionService struct{}

// NewPointsConversionService 建構函數
// Domain Service 無狀態，保留建構函數用於未來擴展
func NewPointsConversionService() *PointsConversionService {
	return &PointsConversionService{}
}

// CalculateFromAmount 根據消費金額和轉換率計算積分
//
// 業務規則：
// - 積分 = floor(金額 / 轉換率)
// - 使用向下取整（消費 99.99 元、轉換率 100 得到 0 點）
// - 負數金額返回 0 積分（防禦性編程）
//
// 參數：
//   amount - 消費金額（使用 decimal.Decimal 確保精確計算）
//   rate - 轉換率值對象
func (s *PointsConversionService) CalculateFromAmount(
	amount decimal.Decimal,
	rate ConversionRate,
) (PointsAmount, error) {
	rateValue := decimal.NewFromInt(int64(rate.Value()))

	pointsValue := amount.Div(rateValue).Floor().IntPart()

	// 邊緣情況：負數金額（理論上不應該發生，但保持防禦性）
	if pointsValue < 0 {
		pointsValue = 0
	}

	// 使用 checked 建構函數，確保積分有效性
	return NewPointsAmount(int(pointsValue))
}

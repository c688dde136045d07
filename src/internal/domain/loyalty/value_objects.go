package loyalty

import (
	"fmt"
	"math"
)

// ===========================
// PointsAmount 積分數量
// ===========================

// PointsAmount 積分數量值對象
// 設計原則：值對象不可變、自我驗證
//
// 建構約束：積分數量必須 >= 0（不存在負數積分的概念）
// 注意：零是合法的「數量」，但不是合法的「異動幅度」——
// 入點/扣點的正數檢查屬於業務規則，由 AwardPolicy 與用例層執行
type PointsAmount struct {
	value int
}

// NewPointsAmount 建構函數（checked 版本）
// 對外部輸入進行完整驗證
func NewPointsAmount(value int) (PointsAmount, error) {
	if value < 0 {
		return PointsAmount{}, fmt.Errorf(
			"%w: attempted to create PointsAmount with value %d",
			ErrNegativePointsAmount,
			value,
		)
	}
	return PointsAmount{value: value}, nil
}

// newPointsAmountUnchecked 內部建構函數（unchecked 版本）
// 僅供內部使用，當我們確定值有效時使用（性能優化）
//
// 前提條件：調用者必須保證 value >= 0
func newPointsAmountUnchecked(value int) PointsAmount {
	return PointsAmount{value: value}
}

// Value 獲取積分數量
func (p PointsAmount) Value() int {
	return p.value
}

// IsZero 判斷是否為零
func (p PointsAmount) IsZero() bool {
	return p.value == 0
}

// Add 相加（返回新的 PointsAmount，保持不變性）
//
// 溢位檢查：兩個有效的 PointsAmount 相加可能超過 int 上限，
// 此時返回 ErrPointsOverflow 而非默默回繞
func (p PointsAmount) Add(other PointsAmount) (PointsAmount, error) {
	if p.value > math.MaxInt-other.value {
		return PointsAmount{}, ErrPointsOverflow.WithContext(
			"left", p.value,
			"right", other.value,
		)
	}
	return newPointsAmountUnchecked(p.value + other.value), nil
}

// Subtract 相減（返回新的 PointsAmount）
// 業務規則：不能扣除超過當前數量的積分
func (p PointsAmount) Subtract(other PointsAmount) (PointsAmount, error) {
	// 檢查業務規則：餘額是否足夠
	if p.value < other.value {
		// 這是業務規則違反，不是建構約束違反
		return PointsAmount{}, fmt.Errorf(
			"%w: cannot subtract %d from %d (insufficient balance)",
			ErrInsufficientPoints,
			other.value,
			p.value,
		)
	}

	// 已經保證 result >= 0，可以安全使用 unchecked 建構
	return newPointsAmountUnchecked(p.value - other.value), nil
}

// Equals 比較兩個 PointsAmount 是否相等
func (p PointsAmount) Equals(other PointsAmount) bool {
	return p.value == other.value
}

// GreaterThan 判斷是否大於另一個 PointsAmount
func (p PointsAmount) GreaterThan(other PointsAmount) bool {
	return p.value > other.value
}

// LessThan 判斷是否小於另一個 PointsAmount
func (p PointsAmount) LessThan(other PointsAmount) bool {
	return p.value < other.value
}

// GreaterThanOrEqual 判斷是否大於等於另一個 PointsAmount
func (p PointsAmount) GreaterThanOrEqual(other PointsAmount) bool {
	return p.value >= other.value
}

// ===========================
// TransactionKind 流水類型
// ===========================

// TransactionKind 流水類型（封閉枚舉）
//
// 設計決策：帳本只有兩種事實——入點與兌換
// 沖正（reversal）不是新類型，而是一筆反向的補償流水
type TransactionKind string

const (
	// KindAward 入點（餘額增加）
	KindAward TransactionKind = "AWARD"

	// KindRedeem 兌換（餘額減少）
	KindRedeem TransactionKind = "REDEEM"
)

// ParseTransactionKind 從字串解析流水類型
// 使用場景：流水查詢的 kind 過濾條件來自外部輸入
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case KindAward:
		return KindAward, nil
	case KindRedeem:
		return KindRedeem, nil
	default:
		return "", ErrInvalidTransactionKind.WithContext("input", s)
	}
}

// IsValid 判斷是否為合法的流水類型
func (k TransactionKind) IsValid() bool {
	return k == KindAward || k == KindRedeem
}

// Sign 返回此類型對餘額的符號（AWARD: +1, REDEEM: -1）
// 使用場景：對帳時計算流水的帶符號加總
func (k TransactionKind) Sign() int {
	if k == KindRedeem {
		return -1
	}
	return 1
}

// ===========================
// IdempotencyKey 冪等鍵
// ===========================

// maxIdempotencyKeyLength 冪等鍵長度上限（對應資料庫欄位長度）
const maxIdempotencyKeyLength = 128

// IdempotencyKey 冪等鍵值對象
//
// 語義：
// - 調用者自選的重試令牌：同一鍵的第二次入點/兌換不會產生第二筆異動，
//   而是返回第一次的結果
// - 空鍵（零值）表示調用者放棄冪等保護
type IdempotencyKey struct {
	value string
}

// NewIdempotencyKey 建構函數
//
// 建構約束：長度不超過資料庫欄位上限；空字串返回零值（合法，表示未提供）
func NewIdempotencyKey(value string) (IdempotencyKey, error) {
	if len(value) > maxIdempotencyKeyLength {
		return IdempotencyKey{}, ErrInvalidFilter.WithContext(
			"reason", "idempotency key too long",
			"length", len(value),
			"max", maxIdempotencyKeyLength,
		)
	}
	return IdempotencyKey{value: value}, nil
}

// Value 獲取冪等鍵字串
func (k IdempotencyKey) Value() string {
	return k.value
}

// IsEmpty 判斷調用者是否未提供冪等鍵
func (k IdempotencyKey) IsEmpty() bool {
	return k.value == ""
}

// ===========================
// ConversionRate 轉換率
// ===========================

// ConversionRate 消費金額轉積分的轉換率值對象
//
// 業務規則：每 N 元 1 點，N 必須在 1-1000 之間
// （N=1 表示 1 元 1 點；N=1000 為防呆上限，避免設定錯誤導致積分歸零）
type ConversionRate struct {
	value int
}

// NewConversionRate 建構函數
func NewConversionRate(value int) (ConversionRate, error) {
	if value < 1 || value > 1000 {
		return ConversionRate{}, ErrInvalidConversionRate.WithContext(
			"value", value,
		)
	}
	return ConversionRate{value: value}, nil
}

// Value 獲取轉換率
func (r ConversionRate) Value() int {
	return r.value
}

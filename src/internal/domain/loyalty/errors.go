package loyalty

import "fmt"

// ===========================
// 錯誤代碼定義
// ===========================

// ErrorCode 錯誤代碼類型
type ErrorCode string

// 錯誤代碼常量
//
// 分類原則（供上層映射傳輸層錯誤碼使用）：
// - 驗證錯誤：調用者修正輸入後可重試
// - 狀態錯誤：不改變輸入則重試必然失敗
// - 倉儲錯誤：瞬時故障，搭配冪等鍵可安全重試
const (
	// 積分數量相關（驗證錯誤）
	ErrCodeNegativePointsAmount ErrorCode = "POINTS_NEGATIVE"
	ErrCodeInvalidPointsAmount  ErrorCode = "POINTS_INVALID_AMOUNT"
	ErrCodeLimitExceeded        ErrorCode = "POINTS_LIMIT_EXCEEDED"
	ErrCodePointsOverflow       ErrorCode = "POINTS_OVERFLOW"

	// 餘額與報名相關（狀態錯誤）
	ErrCodeInsufficientPoints ErrorCode = "POINTS_INSUFFICIENT"
	ErrCodeNotEnrolled        ErrorCode = "ENROLLMENT_NOT_FOUND"
	ErrCodeProgramNotFound    ErrorCode = "PROGRAM_NOT_FOUND"

	// 轉換率相關
	ErrCodeInvalidConversionRate ErrorCode = "CONVERSION_RATE_INVALID"

	// ID 相關
	ErrCodeInvalidCustomerID    ErrorCode = "CUSTOMER_ID_INVALID"
	ErrCodeInvalidBusinessID    ErrorCode = "BUSINESS_ID_INVALID"
	ErrCodeInvalidProgramID     ErrorCode = "PROGRAM_ID_INVALID"
	ErrCodeInvalidRewardID      ErrorCode = "REWARD_ID_INVALID"
	ErrCodeInvalidTransactionID ErrorCode = "TRANSACTION_ID_INVALID"

	// 流水記錄相關
	ErrCodeInvalidTransactionKind ErrorCode = "TRANSACTION_KIND_INVALID"
	ErrCodeMissingRewardID        ErrorCode = "TRANSACTION_REWARD_REQUIRED"
	ErrCodeInvalidFilter          ErrorCode = "TRANSACTION_FILTER_INVALID"
)

// ===========================
// DomainError 結構
// ===========================

// DomainError 領域錯誤
// 設計原則：
// 1. 包含結構化的錯誤代碼（用於傳輸層錯誤碼映射）
// 2. 支持上下文信息（用於調試和日誌）
// 3. 不可變性（創建後不可修改）
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

// Error 實現 error 接口
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (context: %+v)", e.Code, e.Message, e.Context)
}

// WithContext 添加上下文信息（返回新的錯誤實例，保持不可變性）
func (e *DomainError) WithContext(keyValues ...interface{}) error {
	if len(keyValues)%2 != 0 {
		panic("WithContext requires even number of arguments (key-value pairs)")
	}

	ctx := make(map[string]interface{}, len(e.Context)+len(keyValues)/2)

	// 複製現有上下文
	for k, v := range e.Context {
		ctx[k] = v
	}

	// 添加新上下文
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			panic(fmt.Sprintf("context key must be string, got %T", keyValues[i]))
		}
		ctx[key] = keyValues[i+1]
	}

	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Context: ctx,
	}
}

// Is 實現 errors.Is 接口（用於錯誤類型判斷）
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ===========================
// 預定義錯誤
// ===========================

// 積分數量相關錯誤
var (
	ErrNegativePointsAmount = &DomainError{
		Code:    ErrCodeNegativePointsAmount,
		Message: "積分數量不能為負數",
	}

	// ErrInvalidPointsAmount 入點/扣點數量必須為正整數
	ErrInvalidPointsAmount = &DomainError{
		Code:    ErrCodeInvalidPointsAmount,
		Message: "積分數量必須大於 0",
	}

	// ErrLimitExceeded 單次入點超過設定上限
	// 防止誤操作（fat-finger）或濫用在一次調用中污染帳本
	ErrLimitExceeded = &DomainError{
		Code:    ErrCodeLimitExceeded,
		Message: "單次積分數量超過上限",
	}

	ErrPointsOverflow = &DomainError{
		Code:    ErrCodePointsOverflow,
		Message: "積分數量溢位",
	}

	ErrInsufficientPoints = &DomainError{
		Code:    ErrCodeInsufficientPoints,
		Message: "積分餘額不足",
	}
)

// 報名與方案相關錯誤
var (
	// ErrNotEnrolled 客戶尚未報名該方案（沒有餘額記錄）
	ErrNotEnrolled = &DomainError{
		Code:    ErrCodeNotEnrolled,
		Message: "客戶尚未報名此集點方案",
	}

	// ErrProgramNotFound 方案不存在，或不屬於指定商家
	ErrProgramNotFound = &DomainError{
		Code:    ErrCodeProgramNotFound,
		Message: "集點方案不存在或不屬於此商家",
	}
)

// 轉換率相關錯誤
var (
	ErrInvalidConversionRate = &DomainError{
		Code:    ErrCodeInvalidConversionRate,
		Message: "轉換率必須在 1-1000 之間",
	}
)

// ID 相關錯誤
var (
	ErrInvalidCustomerID = &DomainError{
		Code:    ErrCodeInvalidCustomerID,
		Message: "無效的客戶 ID",
	}

	ErrInvalidBusinessID = &DomainError{
		Code:    ErrCodeInvalidBusinessID,
		Message: "無效的商家 ID",
	}

	ErrInvalidProgramID = &DomainError{
		Code:    ErrCodeInvalidProgramID,
		Message: "無效的方案 ID",
	}

	ErrInvalidRewardID = &DomainError{
		Code:    ErrCodeInvalidRewardID,
		Message: "無效的獎勵 ID",
	}

	ErrInvalidTransactionID = &DomainError{
		Code:    ErrCodeInvalidTransactionID,
		Message: "無效的流水 ID",
	}
)

// 流水記錄相關錯誤
var (
	ErrInvalidTransactionKind = &DomainError{
		Code:    ErrCodeInvalidTransactionKind,
		Message: "無效的流水類型",
	}

	// ErrMissingRewardID REDEEM 流水必須關聯獎勵
	ErrMissingRewardID = &DomainError{
		Code:    ErrCodeMissingRewardID,
		Message: "兌換流水必須包含獎勵 ID",
	}

	ErrInvalidFilter = &DomainError{
		Code:    ErrCodeInvalidFilter,
		Message: "無效的流水查詢條件",
	}
)

package loyalty

import (
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// 實體 ID 類型定義
// ===========================

// 設計原則：使用泛型 EntityID[T] 消除重複代碼
//
// 類型安全保證：
// - CustomerID、BusinessID、ProgramID 等是互不相容的類型（編譯器強制檢查）
// - 帳本操作的參數順序錯誤會在編譯期被攔截
//   （award(customerID, businessID, programID, ...) 傳錯位置無法編譯）

// ===========================
// CustomerID - 客戶 ID
// ===========================

// CustomerMarker 是 CustomerID 的標記類型
type CustomerMarker struct{}

// CustomerID 客戶的唯一標識符
//
// 注意：客戶身份的驗證與授權由外部的 Auth 層完成，
// 帳本核心信任傳入的 CustomerID 已通過授權檢查
type CustomerID = shared.EntityID[CustomerMarker]

// NewCustomerID 生成新的客戶 ID（UUID v4）
func NewCustomerID() CustomerID {
	return shared.NewEntityID[CustomerMarker]()
}

// CustomerIDFromString 從字串解析客戶 ID
func CustomerIDFromString(s string) (CustomerID, error) {
	return shared.EntityIDFromString[CustomerMarker](s, ErrInvalidCustomerID)
}

// ===========================
// BusinessID - 商家 ID
// ===========================

// BusinessMarker 是 BusinessID 的標記類型
type BusinessMarker struct{}

// BusinessID 商家的唯一標識符
type BusinessID = shared.EntityID[BusinessMarker]

// NewBusinessID 生成新的商家 ID（UUID v4）
func NewBusinessID() BusinessID {
	return shared.NewEntityID[BusinessMarker]()
}

// BusinessIDFromString 從字串解析商家 ID
func BusinessIDFromString(s string) (BusinessID, error) {
	return shared.EntityIDFromString[BusinessMarker](s, ErrInvalidBusinessID)
}

// ===========================
// ProgramID - 集點方案 ID
// ===========================

// ProgramMarker 是 ProgramID 的標記類型
type ProgramMarker struct{}

// ProgramID 集點方案的唯一標識符
//
// 方案本身（名稱、規則、所屬商家）由外部的方案註冊表管理，
// 帳本核心只透過 ProgramRegistry 介面做唯讀的歸屬驗證
type ProgramID = shared.EntityID[ProgramMarker]

// NewProgramID 生成新的方案 ID（UUID v4）
func NewProgramID() ProgramID {
	return shared.NewEntityID[ProgramMarker]()
}

// ProgramIDFromString 從字串解析方案 ID
func ProgramIDFromString(s string) (ProgramID, error) {
	return shared.EntityIDFromString[ProgramMarker](s, ErrInvalidProgramID)
}

// ===========================
// RewardID - 獎勵 ID
// ===========================

// RewardMarker 是 RewardID 的標記類型
type RewardMarker struct{}

// RewardID 獎勵的唯一標識符（僅出現在 REDEEM 流水中）
type RewardID = shared.EntityID[RewardMarker]

// NewRewardID 生成新的獎勵 ID（UUID v4）
func NewRewardID() RewardID {
	return shared.NewEntityID[RewardMarker]()
}

// RewardIDFromString 從字串解析獎勵 ID
func RewardIDFromString(s string) (RewardID, error) {
	return shared.EntityIDFromString[RewardMarker](s, ErrInvalidRewardID)
}

// ===========================
// TransactionID - 流水 ID
// ===========================

// TransactionMarker 是 TransactionID 的標記類型
type TransactionMarker struct{}

// TransactionID 流水記錄的唯一標識符
//
// 流水記錄一旦寫入即不可變，此 ID 同時充當兌換記錄的憑證 ID
type TransactionID = shared.EntityID[TransactionMarker]

// NewTransactionID 生成新的流水 ID（UUID v4）
func NewTransactionID() TransactionID {
	return shared.NewEntityID[TransactionMarker]()
}

// TransactionIDFromString 從字串解析流水 ID
func TransactionIDFromString(s string) (TransactionID, error) {
	return shared.EntityIDFromString[TransactionMarker](s, ErrInvalidTransactionID)
}

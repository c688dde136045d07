package loyalty

import (
	"time"
)

// ===========================
// PointsTransaction 流水記錄
// ===========================

// PointsTransaction 積分流水記錄（不可變實體）
//
// 設計原則：
// 1. 一旦創建即不可變：沒有任何 setter，修正以反向補償流水表達
// 2. 帳本只追加（append-only）：本核心永不更新或刪除流水
// 3. balanceAfter 記錄寫入當下的提交後餘額：
//    - 冪等重放時直接返回首筆結果，無需重算
//    - 對帳時可作為輔助線索
//
// 生命週期：
// - 每筆被接受的入點/兌換恰好創建一筆流水
// - 與餘額變更在同一個資料庫事務中提交（要麼都存在，要麼都不存在）
type PointsTransaction struct {
	transactionID TransactionID
	customerID    CustomerID
	businessID    BusinessID
	programID     ProgramID

	kind   TransactionKind
	points PointsAmount // 異動幅度（正數，符號由 kind 決定）

	rewardID RewardID // 僅 REDEEM 有值
	source   string   // 來源標籤（如 "QR_SCAN"、"MANUAL"）

	description    string
	idempotencyKey IdempotencyKey // 可為空（調用者未提供）
	balanceAfter   PointsAmount   // 此筆提交後的餘額快照

	createdAt time.Time
}

// ===========================
// 建構函數（工廠方法）
// ===========================

// NewAwardTransaction 創建入點流水
//
// 前置條件（由用例層保證）：
// - amount 為正且通過 AwardPolicy 檢查
// - balanceAfter 為條件更新成功後的提交後餘額
func NewAwardTransaction(
	customerID CustomerID,
	businessID BusinessID,
	programID ProgramID,
	amount PointsAmount,
	balanceAfter PointsAmount,
	source string,
	description string,
	idempotencyKey IdempotencyKey,
) (*PointsTransaction, error) {
	if err := validateParties(customerID, businessID, programID); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrInvalidPointsAmount.WithContext("points", 0)
	}

	return &PointsTransaction{
		transactionID:  NewTransactionID(),
		customerID:     customerID,
		businessID:     businessID,
		programID:      programID,
		kind:           KindAward,
		points:         amount,
		source:         source,
		description:    description,
		idempotencyKey: idempotencyKey,
		balanceAfter:   balanceAfter,
		createdAt:      time.Now(),
	}, nil
}

// NewRedeemTransaction 創建兌換流水
//
// 業務規則：兌換必須關聯獎勵（rewardID 必填）
func NewRedeemTransaction(
	customerID CustomerID,
	businessID BusinessID,
	programID ProgramID,
	amount PointsAmount,
	balanceAfter PointsAmount,
	rewardID RewardID,
	idempotencyKey IdempotencyKey,
) (*PointsTransaction, error) {
	if err := validateParties(customerID, businessID, programID); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrInvalidPointsAmount.WithContext("points", 0)
	}
	if rewardID.IsEmpty() {
		return nil, ErrMissingRewardID
	}

	return &PointsTransaction{
		transactionID:  NewTransactionID(),
		customerID:     customerID,
		businessID:     businessID,
		programID:      programID,
		kind:           KindRedeem,
		points:         amount,
		rewardID:       rewardID,
		source:         "REDEMPTION",
		idempotencyKey: idempotencyKey,
		balanceAfter:   balanceAfter,
		createdAt:      time.Now(),
	}, nil
}

// validateParties 驗證流水的三方 ID（私有輔助函數）
func validateParties(customerID CustomerID, businessID BusinessID, programID ProgramID) error {
	if customerID.IsEmpty() {
		return ErrInvalidCustomerID.WithContext("reason", "customerID cannot be empty")
	}
	if businessID.IsEmpty() {
		return ErrInvalidBusinessID.WithContext("reason", "businessID cannot be empty")
	}
	if programID.IsEmpty() {
		return ErrInvalidProgramID.WithContext("reason", "programID cannot be empty")
	}
	return nil
}

// ===========================
// 查詢方法（Getters）
// ===========================

// TransactionID 獲取流水 ID
func (t *PointsTransaction) TransactionID() TransactionID {
	return t.transactionID
}

// CustomerID 獲取客戶 ID
func (t *PointsTransaction) CustomerID() CustomerID {
	return t.customerID
}

// BusinessID 獲取商家 ID
func (t *PointsTransaction) BusinessID() BusinessID {
	return t.businessID
}

// ProgramID 獲取方案 ID
func (t *PointsTransaction) ProgramID() ProgramID {
	return t.programID
}

// Kind 獲取流水類型
func (t *PointsTransaction) Kind() TransactionKind {
	return t.kind
}

// Points 獲取異動幅度（正數）
func (t *PointsTransaction) Points() PointsAmount {
	return t.points
}

// RewardID 獲取獎勵 ID（AWARD 流水返回零值）
func (t *PointsTransaction) RewardID() RewardID {
	return t.rewardID
}

// Source 獲取來源標籤
func (t *PointsTransaction) Source() string {
	return t.source
}

// Description 獲取描述
func (t *PointsTransaction) Description() string {
	return t.description
}

// IdempotencyKey 獲取冪等鍵（可為空）
func (t *PointsTransaction) IdempotencyKey() IdempotencyKey {
	return t.idempotencyKey
}

// BalanceAfter 獲取此筆提交後的餘額快照
func (t *PointsTransaction) BalanceAfter() PointsAmount {
	return t.balanceAfter
}

// CreatedAt 獲取創建時間
func (t *PointsTransaction) CreatedAt() time.Time {
	return t.createdAt
}

// SignedDelta 獲取此筆流水對餘額的帶符號影響
// 使用場景：對帳時加總驗證 Σ(signed delta) == current_points
func (t *PointsTransaction) SignedDelta() int {
	return t.kind.Sign() * t.points.Value()
}

// ===========================
// 重建方法（僅供 Infrastructure Layer 使用）
// ===========================

// ReconstructTransaction 從持久化存儲重建流水記錄
//
// 注意：重建時同樣驗證封閉約束（kind 合法、REDEEM 必有 rewardID、
// points 為正），防止損壞資料污染領域層
func ReconstructTransaction(
	transactionID TransactionID,
	customerID CustomerID,
	businessID BusinessID,
	programID ProgramID,
	kind TransactionKind,
	points int,
	rewardID RewardID,
	source string,
	description string,
	idempotencyKey IdempotencyKey,
	balanceAfter int,
	createdAt time.Time,
) (*PointsTransaction, error) {
	if transactionID.IsEmpty() {
		return nil, ErrInvalidTransactionID.WithContext(
			"reason", "invalid transaction ID in database",
		)
	}
	if err := validateParties(customerID, businessID, programID); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, ErrInvalidTransactionKind.WithContext("kind", string(kind))
	}
	if kind == KindRedeem && rewardID.IsEmpty() {
		return nil, ErrMissingRewardID.WithContext(
			"transaction_id", transactionID.String(),
		)
	}

	amount, err := NewPointsAmount(points)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrInvalidPointsAmount.WithContext(
			"transaction_id", transactionID.String(),
		)
	}

	balance, err := NewPointsAmount(balanceAfter)
	if err != nil {
		return nil, err
	}

	return &PointsTransaction{
		transactionID:  transactionID,
		customerID:     customerID,
		businessID:     businessID,
		programID:      programID,
		kind:           kind,
		points:         amount,
		rewardID:       rewardID,
		source:         source,
		description:    description,
		idempotencyKey: idempotencyKey,
		balanceAfter:   balance,
		createdAt:      createdAt,
	}, nil
}

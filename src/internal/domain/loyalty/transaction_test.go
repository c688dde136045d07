package loyalty_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
)

// ===========================
// 流水工廠測試
// ===========================

// Test 35: NewAwardTransaction 成功建立
func TestNewAwardTransaction_ValidInput_Success(t *testing.T) {
	// Arrange
	customerID := loyalty.NewCustomerID()
	businessID := loyalty.NewBusinessID()
	programID := loyalty.NewProgramID()
	amount, _ := loyalty.NewPointsAmount(100)
	balanceAfter, _ := loyalty.NewPointsAmount(150)
	key, _ := loyalty.NewIdempotencyKey("req-1")

	// Act
	transaction, err := loyalty.NewAwardTransaction(
		customerID, businessID, programID,
		amount, balanceAfter,
		"QR_SCAN", "消費集點", key,
	)

	// Assert
	require.NoError(t, err)
	assert.False(t, transaction.TransactionID().IsEmpty())
	assert.Equal(t, loyalty.KindAward, transaction.Kind())
	assert.Equal(t, 100, transaction.Points().Value())
	assert.Equal(t, 150, transaction.BalanceAfter().Value())
	assert.Equal(t, "QR_SCAN", transaction.Source())
	assert.True(t, transaction.RewardID().IsEmpty(), "入點流水不關聯獎勵")
	assert.Equal(t, "req-1", transaction.IdempotencyKey().Value())
}

// Test 36: NewAwardTransaction 產生唯一流水 ID
func TestNewAwardTransaction_GeneratesUniqueTransactionID(t *testing.T) {
	// Arrange
	customerID := loyalty.NewCustomerID()
	businessID := loyalty.NewBusinessID()
	programID := loyalty.NewProgramID()
	amount, _ := loyalty.NewPointsAmount(10)
	balanceAfter, _ := loyalty.NewPointsAmount(10)

	// Act
	tx1, _ := loyalty.NewAwardTransaction(customerID, businessID, programID,
		amount, balanceAfter, "MANUAL", "", loyalty.IdempotencyKey{})
	tx2, _ := loyalty.NewAwardTransaction(customerID, businessID, programID,
		amount, balanceAfter, "MANUAL", "", loyalty.IdempotencyKey{})

	// Assert
	assert.False(t, tx1.TransactionID().Equals(tx2.TransactionID()))
}

// Test 37: NewAwardTransaction 零幅度失敗
func TestNewAwardTransaction_ZeroAmount_ReturnsError(t *testing.T) {
	// Arrange
	zero, _ := loyalty.NewPointsAmount(0)
	balanceAfter, _ := loyalty.NewPointsAmount(100)

	// Act
	transaction, err := loyalty.NewAwardTransaction(
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		zero, balanceAfter, "MANUAL", "", loyalty.IdempotencyKey{},
	)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, transaction)
	assert.ErrorIs(t, err, loyalty.ErrInvalidPointsAmount)
}

// Test 38: NewAwardTransaction 空商家 ID 失敗
func TestNewAwardTransaction_EmptyBusinessID_ReturnsError(t *testing.T) {
	// Arrange
	amount, _ := loyalty.NewPointsAmount(10)
	balanceAfter, _ := loyalty.NewPointsAmount(10)

	// Act
	_, err := loyalty.NewAwardTransaction(
		loyalty.NewCustomerID(), loyalty.BusinessID{}, loyalty.NewProgramID(),
		amount, balanceAfter, "MANUAL", "", loyalty.IdempotencyKey{},
	)

	// Assert
	assert.ErrorIs(t, err, loyalty.ErrInvalidBusinessID)
}

// Test 39: NewRedeemTransaction 成功建立（來源固定為 REDEMPTION）
func TestNewRedeemTransaction_ValidInput_Success(t *testing.T) {
	// Arrange
	rewardID := loyalty.NewRewardID()
	amount, _ := loyalty.NewPointsAmount(30)
	balanceAfter, _ := loyalty.NewPointsAmount(70)

	// Act
	transaction, err := loyalty.NewRedeemTransaction(
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		amount, balanceAfter, rewardID, loyalty.IdempotencyKey{},
	)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, loyalty.KindRedeem, transaction.Kind())
	assert.Equal(t, 30, transaction.Points().Value())
	assert.True(t, rewardID.Equals(transaction.RewardID()))
	assert.Equal(t, "REDEMPTION", transaction.Source())
}

// Test 40: NewRedeemTransaction 缺少獎勵 ID 失敗
func TestNewRedeemTransaction_MissingRewardID_ReturnsError(t *testing.T) {
	// Arrange
	amount, _ := loyalty.NewPointsAmount(30)
	balanceAfter, _ := loyalty.NewPointsAmount(70)

	// Act
	transaction, err := loyalty.NewRedeemTransaction(
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		amount, balanceAfter, loyalty.RewardID{}, loyalty.IdempotencyKey{},
	)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, transaction)
	assert.ErrorIs(t, err, loyalty.ErrMissingRewardID)
}

// Test 41: SignedDelta 帶符號幅度
func TestPointsTransaction_SignedDelta(t *testing.T) {
	// Arrange
	amount, _ := loyalty.NewPointsAmount(30)
	balanceAfter, _ := loyalty.NewPointsAmount(70)

	award, _ := loyalty.NewAwardTransaction(
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		amount, balanceAfter, "MANUAL", "", loyalty.IdempotencyKey{},
	)
	redeem, _ := loyalty.NewRedeemTransaction(
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		amount, balanceAfter, loyalty.NewRewardID(), loyalty.IdempotencyKey{},
	)

	// Act & Assert
	assert.Equal(t, 30, award.SignedDelta())
	assert.Equal(t, -30, redeem.SignedDelta())
}

// ===========================
// ReconstructTransaction 測試
// ===========================

// Test 42: Reconstruct 重建流水記錄
func TestReconstructTransaction_ValidData_Success(t *testing.T) {
	// Arrange
	transactionID := loyalty.NewTransactionID()
	createdAt := time.Now().Add(-time.Hour)
	key, _ := loyalty.NewIdempotencyKey("req-9")

	// Act
	transaction, err := loyalty.ReconstructTransaction(
		transactionID,
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		loyalty.KindAward, 100,
		loyalty.RewardID{}, "QR_SCAN", "消費集點",
		key, 250, createdAt,
	)

	// Assert
	require.NoError(t, err)
	assert.True(t, transactionID.Equals(transaction.TransactionID()))
	assert.Equal(t, 100, transaction.Points().Value())
	assert.Equal(t, 250, transaction.BalanceAfter().Value())
	assert.Equal(t, createdAt, transaction.CreatedAt())
}

// Test 43: Reconstruct 非法流水類型失敗
func TestReconstructTransaction_InvalidKind_ReturnsError(t *testing.T) {
	// Act
	_, err := loyalty.ReconstructTransaction(
		loyalty.NewTransactionID(),
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		loyalty.TransactionKind("EXPIRE"), 100,
		loyalty.RewardID{}, "", "",
		loyalty.IdempotencyKey{}, 100, time.Now(),
	)

	// Assert
	assert.ErrorIs(t, err, loyalty.ErrInvalidTransactionKind)
}

// Test 44: Reconstruct REDEEM 缺少獎勵 ID 失敗
func TestReconstructTransaction_RedeemWithoutReward_ReturnsError(t *testing.T) {
	// Act
	_, err := loyalty.ReconstructTransaction(
		loyalty.NewTransactionID(),
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		loyalty.KindRedeem, 30,
		loyalty.RewardID{}, "REDEMPTION", "",
		loyalty.IdempotencyKey{}, 70, time.Now(),
	)

	// Assert
	assert.ErrorIs(t, err, loyalty.ErrMissingRewardID)
}

// Test 45: Reconstruct 零幅度失敗（帳本中不存在零幅度流水）
func TestReconstructTransaction_ZeroPoints_ReturnsError(t *testing.T) {
	// Act
	_, err := loyalty.ReconstructTransaction(
		loyalty.NewTransactionID(),
		loyalty.NewCustomerID(), loyalty.NewBusinessID(), loyalty.NewProgramID(),
		loyalty.KindAward, 0,
		loyalty.RewardID{}, "", "",
		loyalty.IdempotencyKey{}, 100, time.Now(),
	)

	// Assert
	assert.ErrorIs(t, err, loyalty.ErrInvalidPointsAmount)
}

package loyalty_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
)

// ===========================
// Enrollment 建構測試
// ===========================

// Test 20: NewEnrollment 成功建立（初始餘額為 0）
func TestNewEnrollment_ValidIDs_Success(t *testing.T) {
	// Arrange
	customerID := loyalty.NewCustomerID()
	programID := loyalty.NewProgramID()

	// Act
	enrollment, err := loyalty.NewEnrollment(customerID, programID)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, enrollment)
	assert.True(t, customerID.Equals(enrollment.CustomerID()))
	assert.True(t, programID.Equals(enrollment.ProgramID()))
	assert.Equal(t, 0, enrollment.CurrentPoints().Value())
}

// Test 21: NewEnrollment 空客戶 ID 失敗
func TestNewEnrollment_EmptyCustomerID_ReturnsError(t *testing.T) {
	// Arrange
	emptyCustomerID := loyalty.CustomerID{}
	programID := loyalty.NewProgramID()

	// Act
	enrollment, err := loyalty.NewEnrollment(emptyCustomerID, programID)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, enrollment)
	assert.ErrorIs(t, err, loyalty.ErrInvalidCustomerID)
}

// Test 22: NewEnrollment 空方案 ID 失敗
func TestNewEnrollment_EmptyProgramID_ReturnsError(t *testing.T) {
	// Arrange
	customerID := loyalty.NewCustomerID()
	emptyProgramID := loyalty.ProgramID{}

	// Act
	enrollment, err := loyalty.NewEnrollment(customerID, emptyProgramID)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, enrollment)
	assert.ErrorIs(t, err, loyalty.ErrInvalidProgramID)
}

// Test 23: NewEnrollment 發布 EnrollmentCreated 事件
func TestNewEnrollment_PublishesEnrollmentCreatedEvent(t *testing.T) {
	// Arrange
	customerID := loyalty.NewCustomerID()
	programID := loyalty.NewProgramID()

	// Act
	enrollment, _ := loyalty.NewEnrollment(customerID, programID)

	// Assert
	events := enrollment.PullEvents()
	assert.Len(t, events, 1)
	assert.Equal(t, "loyalty.enrollment_created", events[0].EventType())
}

// Test 24: PullEvents 清空事件列表
func TestEnrollment_PullEvents_ClearsEventList(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())

	// Act
	events1 := enrollment.PullEvents()
	events2 := enrollment.PullEvents()

	// Assert
	assert.Len(t, events1, 1, "第一次拉取應該有 1 個事件")
	assert.Len(t, events2, 0, "第二次拉取應該為空（事件已被清空）")
}

// ===========================
// Award 命令測試
// ===========================

// Test 25: Award 成功入點
func TestEnrollment_Award_Success(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())
	enrollment.PullEvents() // 清除創建事件

	amount, _ := loyalty.NewPointsAmount(100)

	// Act
	err := enrollment.Award(amount, "QR_SCAN", "消費集點")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 100, enrollment.CurrentPoints().Value())
}

// Test 26: Award 多次累加
func TestEnrollment_Award_Accumulates(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())
	enrollment.PullEvents()

	amount1, _ := loyalty.NewPointsAmount(100)
	amount2, _ := loyalty.NewPointsAmount(50)

	// Act
	err1 := enrollment.Award(amount1, "QR_SCAN", "第一筆")
	err2 := enrollment.Award(amount2, "MANUAL", "第二筆")

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, 150, enrollment.CurrentPoints().Value())
}

// Test 27: Award 發布 PointsAwarded 事件（含提交後餘額）
func TestEnrollment_Award_PublishesEventWithBalanceAfter(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())
	enrollment.PullEvents()

	amount, _ := loyalty.NewPointsAmount(100)

	// Act
	err := enrollment.Award(amount, "QR_SCAN", "消費集點")

	// Assert
	require.NoError(t, err)
	events := enrollment.PullEvents()
	require.Len(t, events, 1)

	awarded, ok := events[0].(*loyalty.PointsAwardedEvent)
	require.True(t, ok)
	assert.Equal(t, "loyalty.points_awarded", awarded.EventType())
	assert.Equal(t, 100, awarded.Amount().Value())
	assert.Equal(t, 100, awarded.BalanceAfter().Value())
	assert.Equal(t, "QR_SCAN", awarded.Source())
}

// ===========================
// Redeem 命令測試
// ===========================

// Test 28: Redeem 成功兌換
func TestEnrollment_Redeem_Success(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())
	enrollment.PullEvents()

	earned, _ := loyalty.NewPointsAmount(100)
	_ = enrollment.Award(earned, "QR_SCAN", "入點")
	enrollment.PullEvents()

	cost, _ := loyalty.NewPointsAmount(30)

	// Act
	err := enrollment.Redeem(cost, loyalty.NewRewardID())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 70, enrollment.CurrentPoints().Value())
}

// Test 29: Redeem 餘額不足失敗（帳本完全不動）
func TestEnrollment_Redeem_InsufficientBalance_ReturnsError(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())
	enrollment.PullEvents()

	earned, _ := loyalty.NewPointsAmount(50)
	_ = enrollment.Award(earned, "QR_SCAN", "入點")
	enrollment.PullEvents()

	cost, _ := loyalty.NewPointsAmount(100)

	// Act
	err := enrollment.Redeem(cost, loyalty.NewRewardID())

	// Assert
	assert.Error(t, err)
	assert.ErrorIs(t, err, loyalty.ErrInsufficientPoints)
	// 驗證餘額未被修改
	assert.Equal(t, 50, enrollment.CurrentPoints().Value())
	// 驗證未發布事件
	assert.Len(t, enrollment.PullEvents(), 0)
}

// Test 30: Redeem 剛好扣到零（邊界：全額兌換合法）
func TestEnrollment_Redeem_ExactBalance_Success(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())
	enrollment.PullEvents()

	earned, _ := loyalty.NewPointsAmount(100)
	_ = enrollment.Award(earned, "QR_SCAN", "入點")
	enrollment.PullEvents()

	cost, _ := loyalty.NewPointsAmount(100)

	// Act
	err := enrollment.Redeem(cost, loyalty.NewRewardID())

	// Assert
	assert.NoError(t, err)
	assert.True(t, enrollment.CurrentPoints().IsZero())
}

// Test 31: Redeem 空獎勵 ID 失敗
func TestEnrollment_Redeem_EmptyRewardID_ReturnsError(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())
	enrollment.PullEvents()

	earned, _ := loyalty.NewPointsAmount(100)
	_ = enrollment.Award(earned, "QR_SCAN", "入點")
	enrollment.PullEvents()

	cost, _ := loyalty.NewPointsAmount(30)

	// Act
	err := enrollment.Redeem(cost, loyalty.RewardID{})

	// Assert
	assert.Error(t, err)
	assert.ErrorIs(t, err, loyalty.ErrInvalidRewardID)
	assert.Equal(t, 100, enrollment.CurrentPoints().Value())
}

// Test 32: Redeem 發布 PointsRedeemed 事件
func TestEnrollment_Redeem_PublishesEvent(t *testing.T) {
	// Arrange
	enrollment, _ := loyalty.NewEnrollment(loyalty.NewCustomerID(), loyalty.NewProgramID())
	enrollment.PullEvents()

	earned, _ := loyalty.NewPointsAmount(100)
	_ = enrollment.Award(earned, "QR_SCAN", "入點")
	enrollment.PullEvents()

	rewardID := loyalty.NewRewardID()
	cost, _ := loyalty.NewPointsAmount(30)

	// Act
	err := enrollment.Redeem(cost, rewardID)

	// Assert
	require.NoError(t, err)
	events := enrollment.PullEvents()
	require.Len(t, events, 1)

	redeemed, ok := events[0].(*loyalty.PointsRedeemedEvent)
	require.True(t, ok)
	assert.Equal(t, "loyalty.points_redeemed", redeemed.EventType())
	assert.Equal(t, 30, redeemed.Amount().Value())
	assert.Equal(t, 70, redeemed.BalanceAfter().Value())
	assert.True(t, rewardID.Equals(redeemed.RewardID()))
}

// ===========================
// ReconstructEnrollment 測試
// ===========================

// Test 33: Reconstruct 重建聚合（不發布事件）
func TestReconstructEnrollment_ValidData_Success(t *testing.T) {
	// Arrange
	customerID := loyalty.NewCustomerID()
	programID := loyalty.NewProgramID()
	enrolledAt := time.Now().Add(-24 * time.Hour)
	updatedAt := time.Now()

	// Act
	enrollment, err := loyalty.ReconstructEnrollment(customerID, programID, 250, enrolledAt, updatedAt)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 250, enrollment.CurrentPoints().Value())
	assert.Len(t, enrollment.PullEvents(), 0, "重建不應發布事件")
}

// Test 34: Reconstruct 負數餘額失敗（損壞資料不得污染領域層）
func TestReconstructEnrollment_NegativeBalance_ReturnsError(t *testing.T) {
	// Act
	enrollment, err := loyalty.ReconstructEnrollment(
		loyalty.NewCustomerID(),
		loyalty.NewProgramID(),
		-1,
		time.Now(),
		time.Now(),
	)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, enrollment)
	assert.ErrorIs(t, err, loyalty.ErrNegativePointsAmount)
}

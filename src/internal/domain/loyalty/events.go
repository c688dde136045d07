package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// ===========================
// Enrollment 領域事件
// ===========================

// enrollmentAggregateID 報名聚合的複合 ID 表示（私有輔助函數）
// 格式：<customer_uuid>:<program_uuid>
func enrollmentAggregateID(customerID CustomerID, programID ProgramID) string {
	return customerID.String() + ":" + programID.String()
}

// EnrollmentCreatedEvent 報名創建事件
type EnrollmentCreatedEvent struct {
	eventID    string
	customerID CustomerID
	programID  ProgramID
	occurredAt time.Time
}

// NewEnrollmentCreatedEvent 創建報名創建事件
func NewEnrollmentCreatedEvent(customerID CustomerID, programID ProgramID) *EnrollmentCreatedEvent {
	return &EnrollmentCreatedEvent{
		eventID:    uuid.New().String(),
		customerID: customerID,
		programID:  programID,
		occurredAt: time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e *EnrollmentCreatedEvent) EventID() string {
	return e.eventID
}

// EventType 實現 DomainEvent 介面
func (e *EnrollmentCreatedEvent) EventType() string {
	return "loyalty.enrollment_created"
}

// OccurredAt 實現 DomainEvent 介面
func (e *EnrollmentCreatedEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// AggregateID 實現 DomainEvent 介面
func (e *EnrollmentCreatedEvent) AggregateID() string {
	return enrollmentAggregateID(e.customerID, e.programID)
}

// CustomerID 獲取客戶 ID
func (e *EnrollmentCreatedEvent) CustomerID() CustomerID {
	return e.customerID
}

// ProgramID 獲取方案 ID
func (e *EnrollmentCreatedEvent) ProgramID() ProgramID {
	return e.programID
}

// ===========================
// PointsAwarded 領域事件
// ===========================

// PointsAwardedEvent 積分已入點事件
type PointsAwardedEvent struct {
	eventID      string
	customerID   CustomerID
	programID    ProgramID
	amount       PointsAmount
	balanceAfter PointsAmount
	source       string
	description  string
	occurredAt   time.Time
}

// NewPointsAwardedEvent 創建積分已入點事件
func NewPointsAwardedEvent(
	customerID CustomerID,
	programID ProgramID,
	amount PointsAmount,
	balanceAfter PointsAmount,
	source string,
	description string,
) *PointsAwardedEvent {
	return &PointsAwardedEvent{
		eventID:      uuid.New().String(),
		customerID:   customerID,
		programID:    programID,
		amount:       amount,
		balanceAfter: balanceAfter,
		source:       source,
		description:  description,
		occurredAt:   time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e *PointsAwardedEvent) EventID() string {
	return e.eventID
}

// EventType 實現 DomainEvent 介面
func (e *PointsAwardedEvent) EventType() string {
	return "loyalty.points_awarded"
}

// OccurredAt 實現 DomainEvent 介面
func (e *PointsAwardedEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// AggregateID 實現 DomainEvent 介面
func (e *PointsAwardedEvent) AggregateID() string {
	return enrollmentAggregateID(e.customerID, e.programID)
}

// CustomerID 獲取客戶 ID
func (e *PointsAwardedEvent) CustomerID() CustomerID {
	return e.customerID
}

// ProgramID 獲取方案 ID
func (e *PointsAwardedEvent) ProgramID() ProgramID {
	return e.programID
}

// Amount 獲取入點數量
func (e *PointsAwardedEvent) Amount() PointsAmount {
	return e.amount
}

// BalanceAfter 獲取入點後餘額
func (e *PointsAwardedEvent) BalanceAfter() PointsAmount {
	return e.balanceAfter
}

// Source 獲取積分來源標籤
func (e *PointsAwardedEvent) Source() string {
	return e.source
}

// Description 獲取描述
func (e *PointsAwardedEvent) Description() string {
	return e.description
}

// ===========================
// PointsRedeemed 領域事件
// ===========================

// PointsRedeemedEvent 積分已兌換事件
type PointsRedeemedEvent struct {
	eventID      string
	customerID   CustomerID
	programID    ProgramID
	amount       PointsAmount
	balanceAfter PointsAmount
	rewardID     RewardID
	occurredAt   time.Time
}

// NewPointsRedeemedEvent 創建積分已兌換事件
func NewPointsRedeemedEvent(
	customerID CustomerID,
	programID ProgramID,
	amount PointsAmount,
	balanceAfter PointsAmount,
	rewardID RewardID,
) *PointsRedeemedEvent {
	return &PointsRedeemedEvent{
		eventID:      uuid.New().String(),
		customerID:   customerID,
		programID:    programID,
		amount:       amount,
		balanceAfter: balanceAfter,
		rewardID:     rewardID,
		occurredAt:   time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e *PointsRedeemedEvent) EventID() string {
	return e.eventID
}

// EventType 實現 DomainEvent 介面
func (e *PointsRedeemedEvent) EventType() string {
	return "loyalty.points_redeemed"
}

// OccurredAt 實現 DomainEvent 介面
func (e *PointsRedeemedEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// AggregateID 實現 DomainEvent 介面
func (e *PointsRedeemedEvent) AggregateID() string {
	return enrollmentAggregateID(e.customerID, e.programID)
}

// CustomerID 獲取客戶 ID
func (e *PointsRedeemedEvent) CustomerID() CustomerID {
	return e.customerID
}

// ProgramID 獲取方案 ID
func (e *PointsRedeemedEvent) ProgramID() ProgramID {
	return e.programID
}

// Amount 獲取兌換點數
func (e *PointsRedeemedEvent) Amount() PointsAmount {
	return e.amount
}

// BalanceAfter 獲取兌換後餘額
func (e *PointsRedeemedEvent) BalanceAfter() PointsAmount {
	return e.balanceAfter
}

// RewardID 獲取獎勵 ID
func (e *PointsRedeemedEvent) RewardID() RewardID {
	return e.rewardID
}

package loyalty

import (
	"fmt"
	"time"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// Enrollment 聚合根
// ===========================

// Enrollment 報名聚合根：一位客戶在一個集點方案中的關係與即時餘額
//
// 設計原則：
// 1. 輕量級聚合：不包含無界集合（流水記錄儲存在獨立表）
// 2. 不變條件：CurrentPoints >= 0（必須在每個修改方法中維護）
// 3. 事件驅動：所有狀態變更都發布領域事件
// 4. Tell, Don't Ask：封裝業務邏輯，不暴露內部狀態供外部判斷
//
// 業務不變條件：
// - CurrentPoints >= 0（餘額永不為負）
// - 每個 (customerID, programID) 組合只有一筆報名記錄（由資料庫唯一約束保證）
// - CurrentPoints == Σ(AWARD.points) − Σ(REDEEM.points)（帳本一致性，由對帳批次驗證）
//
// 併發語義：
// 聚合內的 Award/Redeem 驗證針對的是「載入當下」的快照，
// 最終裁決由倉儲的條件更新（UpdateBalance 帶期望餘額）在提交時完成：
// 快照已過期時更新落空，用例層在新事務中重新載入並重試
type Enrollment struct {
	// 聚合根識別符（複合鍵）
	customerID CustomerID
	programID  ProgramID

	// 餘額（唯一可變的真相來源）
	currentPoints PointsAmount

	// 審計字段
	enrolledAt time.Time
	updatedAt  time.Time

	// 待發布的領域事件
	events []shared.DomainEvent
}

// ===========================
// 建構函數（工廠方法）
// ===========================

// NewEnrollment 創建新的報名記錄
//
// 參數：
//   customerID - 客戶 ID（必填）
//   programID - 方案 ID（必填）
//
// 業務規則：
// - 新報名初始餘額為 0（首次入點時惰性創建也走此工廠）
// - 發布 EnrollmentCreated 事件
func NewEnrollment(customerID CustomerID, programID ProgramID) (*Enrollment, error) {
	if customerID.IsEmpty() {
		return nil, ErrInvalidCustomerID.WithContext(
			"reason", "customerID cannot be empty",
		)
	}
	if programID.IsEmpty() {
		return nil, ErrInvalidProgramID.WithContext(
			"reason", "programID cannot be empty",
		)
	}

	now := time.Now()

	enrollment := &Enrollment{
		customerID:    customerID,
		programID:     programID,
		currentPoints: newPointsAmountUnchecked(0), // 0 保證有效，使用 unchecked
		enrolledAt:    now,
		updatedAt:     now,
		events:        make([]shared.DomainEvent, 0),
	}

	enrollment.addEvent(NewEnrollmentCreatedEvent(customerID, programID))

	return enrollment, nil
}

// ===========================
// 查詢方法（Getters）
// ===========================
//
// ⚠️ 警告：不應在業務邏輯中使用這些 getter 做判斷
// 正確做法：在聚合根內部提供業務方法（如 Redeem 自帶餘額檢查）

// CustomerID 獲取客戶 ID
func (e *Enrollment) CustomerID() CustomerID {
	return e.customerID
}

// ProgramID 獲取方案 ID
func (e *Enrollment) ProgramID() ProgramID {
	return e.programID
}

// CurrentPoints 獲取當前餘額
func (e *Enrollment) CurrentPoints() PointsAmount {
	return e.currentPoints
}

// EnrolledAt 獲取報名時間
func (e *Enrollment) EnrolledAt() time.Time {
	return e.enrolledAt
}

// UpdatedAt 獲取最後更新時間
func (e *Enrollment) UpdatedAt() time.Time {
	return e.updatedAt
}

// ===========================
// 事件管理
// ===========================

// addEvent 添加領域事件到待發布列表（私有方法）
func (e *Enrollment) addEvent(event shared.DomainEvent) {
	e.events = append(e.events, event)
}

// PullEvents 獲取所有待發布事件並清空列表
//
// 使用場景：
// - 用例在事務提交成功後調用此方法獲取事件並發布
// - 事件發布由 Infrastructure 層的 EventPublisher 處理
//
// 設計原則：
// - Pull 模式（而非 Push）：聚合根不依賴 EventPublisher
// - 只讀取一次：獲取後清空，避免重複發布
func (e *Enrollment) PullEvents() []shared.DomainEvent {
	events := e.events
	e.events = make([]shared.DomainEvent, 0)
	return events
}

// ===========================
// 命令方法（狀態變更）
// ===========================

// Award 入點（核心業務邏輯）
//
// 參數：
//   amount - 入點數量（必須為正）
//   source - 積分來源標籤（如 "QR_SCAN"、"MANUAL"）
//   description - 入點描述
//
// 前置條件：
// - amount 已通過 NewPointsAmount 驗證，保證 >= 0
// - 正數與上限檢查由 AwardPolicy 在用例層完成
//
// 副作用：
// - 更新 currentPoints（累加，含溢位檢查）
// - 更新 updatedAt
// - 發布 PointsAwardedEvent
//
// 不變條件維護：
// - 此方法只增加 currentPoints，不會違反非負不變條件
func (e *Enrollment) Award(amount PointsAmount, source string, description string) error {
	newBalance, err := e.currentPoints.Add(amount)
	if err != nil {
		// 溢位錯誤：返回為業務錯誤，讓上層決定如何處理
		return err
	}

	e.currentPoints = newBalance
	e.updatedAt = time.Now()

	// 事件將在事務提交成功後通過 PullEvents() 獲取並發布
	e.addEvent(NewPointsAwardedEvent(
		e.customerID,
		e.programID,
		amount,
		newBalance,
		source,
		description,
	))

	return nil
}

// Redeem 兌換扣點（核心業務邏輯）
//
// 參數：
//   amount - 兌換所需點數（必須為正）
//   rewardID - 兌換的獎勵 ID
//
// 業務規則：
// - 餘額必須足夠（前置條件，違反時返回 ErrInsufficientPoints）
// - 扣點後餘額不得為負
//
// 併發注意：
// 此檢查針對載入當下的快照；若提交前餘額被併發修改，
// 倉儲的條件更新會落空，用例層重新載入後此檢查會再跑一次
func (e *Enrollment) Redeem(amount PointsAmount, rewardID RewardID) error {
	if rewardID.IsEmpty() {
		return ErrInvalidRewardID.WithContext(
			"reason", "rewardID cannot be empty",
		)
	}

	newBalance, err := e.currentPoints.Subtract(amount)
	if err != nil {
		return ErrInsufficientPoints.WithContext(
			"requested", amount.Value(),
			"available", e.currentPoints.Value(),
		)
	}

	e.currentPoints = newBalance
	e.updatedAt = time.Now()

	e.addEvent(NewPointsRedeemedEvent(
		e.customerID,
		e.programID,
		amount,
		newBalance,
		rewardID,
	))

	return nil
}

// ===========================
// 聚合重建方法（僅供 Infrastructure Layer 使用）
// ===========================

// ReconstructEnrollment 從持久化存儲重建聚合根
//
// 設計原則：
// - 僅供 Repository 使用
// - 與 NewEnrollment 的區別：
//   * New: 創建新聚合，執行完整驗證，發布 EnrollmentCreated 事件
//   * Reconstruct: 重建已存在的聚合，不發布事件（事件已發生過）
//
// 重要：即使是從資料庫重建，也必須驗證不變條件，防止損壞資料污染領域層
func ReconstructEnrollment(
	customerID CustomerID,
	programID ProgramID,
	currentPoints int,
	enrolledAt time.Time,
	updatedAt time.Time,
) (*Enrollment, error) {
	// 1. 驗證 ID 有效性
	if customerID.IsEmpty() {
		return nil, ErrInvalidCustomerID.WithContext(
			"reason", "invalid customer ID in database",
		)
	}
	if programID.IsEmpty() {
		return nil, ErrInvalidProgramID.WithContext(
			"reason", "invalid program ID in database",
		)
	}

	// 2. 驗證餘額非負（資料庫 CHECK 約束之外的第二道防線）
	balance, err := NewPointsAmount(currentPoints)
	if err != nil {
		return nil, fmt.Errorf(
			"corrupted enrollment balance for customer %s program %s: %w",
			customerID.String(),
			programID.String(),
			err,
		)
	}

	// 3. 重建聚合（重建時不包含事件）
	return &Enrollment{
		customerID:    customerID,
		programID:     programID,
		currentPoints: balance,
		enrolledAt:    enrolledAt,
		updatedAt:     updatedAt,
		events:        make([]shared.DomainEvent, 0),
	}, nil
}

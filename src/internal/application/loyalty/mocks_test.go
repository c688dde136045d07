package loyalty

import (
	"sort"
	"time"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// Mock EnrollmentRepository
// ===========================

type mockEnrollmentRecord struct {
	customerID loyalty.CustomerID
	programID  loyalty.ProgramID
	balance    int
	enrolledAt time.Time
}

type MockEnrollmentRepository struct {
	records map[string]*mockEnrollmentRecord

	GetOrCreateCallCount   int
	UpdateBalanceCallCount int

	// StaleFailuresRemaining > 0 時，UpdateBalance 先返回 N 次
	// ErrStaleBalance（模擬樂觀併發衝突），之後恢復正常
	StaleFailuresRemaining int
}

func NewMockEnrollmentRepository() *MockEnrollmentRepository {
	return &MockEnrollmentRepository{
		records: make(map[string]*mockEnrollmentRecord),
	}
}

func enrollmentKey(customerID loyalty.CustomerID, programID loyalty.ProgramID) string {
	return customerID.String() + ":" + programID.String()
}

// Seed 預先放入一筆報名記錄（測試前置資料）
func (m *MockEnrollmentRepository) Seed(customerID loyalty.CustomerID, programID loyalty.ProgramID, balance int) {
	m.records[enrollmentKey(customerID, programID)] = &mockEnrollmentRecord{
		customerID: customerID,
		programID:  programID,
		balance:    balance,
		enrolledAt: time.Now(),
	}
}

// Balance 讀取目前儲存的餘額（測試斷言用）
func (m *MockEnrollmentRepository) Balance(customerID loyalty.CustomerID, programID loyalty.ProgramID) (int, bool) {
	record, ok := m.records[enrollmentKey(customerID, programID)]
	if !ok {
		return 0, false
	}
	return record.balance, true
}

func (m *MockEnrollmentRepository) GetOrCreate(
	ctx shared.TransactionContext,
	customerID loyalty.CustomerID,
	programID loyalty.ProgramID,
) (*loyalty.Enrollment, error) {
	m.GetOrCreateCallCount++

	if record, exists := m.records[enrollmentKey(customerID, programID)]; exists {
		return loyalty.ReconstructEnrollment(
			record.customerID, record.programID, record.balance,
			record.enrolledAt, time.Now(),
		)
	}

	enrollment, err := loyalty.NewEnrollment(customerID, programID)
	if err != nil {
		return nil, err
	}
	m.records[enrollmentKey(customerID, programID)] = &mockEnrollmentRecord{
		customerID: customerID,
		programID:  programID,
		balance:    0,
		enrolledAt: enrollment.EnrolledAt(),
	}
	return enrollment, nil
}

func (m *MockEnrollmentRepository) Find(
	ctx shared.TransactionContext,
	customerID loyalty.CustomerID,
	programID loyalty.ProgramID,
) (*loyalty.Enrollment, error) {
	record, exists := m.records[enrollmentKey(customerID, programID)]
	if !exists {
		return nil, loyalty.ErrNotEnrolled
	}
	return loyalty.ReconstructEnrollment(
		record.customerID, record.programID, record.balance,
		record.enrolledAt, time.Now(),
	)
}

func (m *MockEnrollmentRepository) UpdateBalance(
	ctx shared.TransactionContext,
	enrollment *loyalty.Enrollment,
	expectedPoints loyalty.PointsAmount,
) error {
	m.UpdateBalanceCallCount++

	if m.StaleFailuresRemaining > 0 {
		m.StaleFailuresRemaining--
		return loyalty.ErrStaleBalance
	}

	record, exists := m.records[enrollmentKey(enrollment.CustomerID(), enrollment.ProgramID())]
	if !exists {
		return loyalty.ErrNotEnrolled
	}
	if record.balance != expectedPoints.Value() {
		return loyalty.ErrStaleBalance
	}
	record.balance = enrollment.CurrentPoints().Value()
	return nil
}

func (m *MockEnrollmentRepository) FindBatch(
	ctx shared.TransactionContext,
	offset int,
	limit int,
) ([]*loyalty.Enrollment, error) {
	keys := make([]string, 0, len(m.records))
	for key := range m.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if offset >= len(keys) {
		return []*loyalty.Enrollment{}, nil
	}
	end := offset + limit
	if end > len(keys) {
		end = len(keys)
	}

	enrollments := make([]*loyalty.Enrollment, 0, end-offset)
	for _, key := range keys[offset:end] {
		record := m.records[key]
		enrollment, err := loyalty.ReconstructEnrollment(
			record.customerID, record.programID, record.balance,
			record.enrolledAt, time.Now(),
		)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, nil
}

// ===========================
// Mock TransactionRepository
// ===========================

type MockTransactionRepository struct {
	entries []*loyalty.PointsTransaction

	AppendCallCount int
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		entries: make([]*loyalty.PointsTransaction, 0),
	}
}

// Entries 返回所有已追加的流水（測試斷言用）
func (m *MockTransactionRepository) Entries() []*loyalty.PointsTransaction {
	return m.entries
}

func (m *MockTransactionRepository) Append(
	ctx shared.TransactionContext,
	transaction *loyalty.PointsTransaction,
) error {
	m.AppendCallCount++

	if !transaction.IdempotencyKey().IsEmpty() {
		for _, existing := range m.entries {
			if existing.IdempotencyKey().Value() == transaction.IdempotencyKey().Value() {
				return loyalty.ErrDuplicateIdempotencyKey
			}
		}
	}

	m.entries = append(m.entries, transaction)
	return nil
}

func (m *MockTransactionRepository) FindByIdempotencyKey(
	ctx shared.TransactionContext,
	key loyalty.IdempotencyKey,
) (*loyalty.PointsTransaction, error) {
	for _, entry := range m.entries {
		if !entry.IdempotencyKey().IsEmpty() && entry.IdempotencyKey().Value() == key.Value() {
			return entry, nil
		}
	}
	return nil, loyalty.ErrTransactionNotFound
}

func (m *MockTransactionRepository) FindByFilter(
	ctx shared.TransactionContext,
	filter loyalty.TransactionFilter,
) ([]*loyalty.PointsTransaction, error) {
	matched := make([]*loyalty.PointsTransaction, 0)
	// createdAt 降序：反向遍歷（entries 依時間順序追加）
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := m.entries[i]
		if filter.CustomerID != nil && !filter.CustomerID.Equals(entry.CustomerID()) {
			continue
		}
		if filter.BusinessID != nil && !filter.BusinessID.Equals(entry.BusinessID()) {
			continue
		}
		if filter.ProgramID != nil && !filter.ProgramID.Equals(entry.ProgramID()) {
			continue
		}
		if filter.Kind != nil && *filter.Kind != entry.Kind() {
			continue
		}
		if filter.StartDate != nil && entry.CreatedAt().Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && !entry.CreatedAt().Before(*filter.EndDate) {
			continue
		}
		matched = append(matched, entry)
	}

	if filter.Offset >= len(matched) {
		return []*loyalty.PointsTransaction{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}

func (m *MockTransactionRepository) SumSignedDeltas(
	ctx shared.TransactionContext,
	customerID loyalty.CustomerID,
	programID loyalty.ProgramID,
) (int64, error) {
	var sum int64
	for _, entry := range m.entries {
		if customerID.Equals(entry.CustomerID()) && programID.Equals(entry.ProgramID()) {
			sum += int64(entry.SignedDelta())
		}
	}
	return sum, nil
}

// ===========================
// Mock TransactionManager
// ===========================

type MockTransactionManager struct {
	InTransactionCallCount int
	ShouldFail             bool
	FailError              error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) InTransaction(fn func(ctx shared.TransactionContext) error) error {
	m.InTransactionCallCount++

	if m.ShouldFail {
		return m.FailError
	}

	// mock 不需要真實事務上下文，nil 即可
	var ctx shared.TransactionContext = nil
	return fn(ctx)
}

// ===========================
// Mock ProgramRegistry
// ===========================

type MockProgramRegistry struct {
	owners map[string]loyalty.BusinessID
}

func NewMockProgramRegistry() *MockProgramRegistry {
	return &MockProgramRegistry{
		owners: make(map[string]loyalty.BusinessID),
	}
}

// Register 登記一個方案的所屬商家（測試前置資料）
func (m *MockProgramRegistry) Register(programID loyalty.ProgramID, businessID loyalty.BusinessID) {
	m.owners[programID.String()] = businessID
}

func (m *MockProgramRegistry) ResolveOwner(programID loyalty.ProgramID) (loyalty.BusinessID, error) {
	owner, exists := m.owners[programID.String()]
	if !exists {
		return loyalty.BusinessID{}, loyalty.ErrProgramNotFound.WithContext(
			"program_id", programID.String(),
		)
	}
	return owner, nil
}

// ===========================
// Mock Notifier / EventPublisher
// ===========================

type MockNotifier struct {
	NotifyCallCount int
	LastKind        loyalty.NotificationKind
	LastTitle       string
	FailWith        error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(
	customerID loyalty.CustomerID,
	kind loyalty.NotificationKind,
	title string,
	message string,
	metadata map[string]interface{},
) error {
	m.NotifyCallCount++
	m.LastKind = kind
	m.LastTitle = title
	return m.FailWith
}

type MockEventPublisher struct {
	Published []shared.DomainEvent
	FailWith  error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Published: make([]shared.DomainEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(event shared.DomainEvent) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Published = append(m.Published, event)
	return nil
}

func (m *MockEventPublisher) PublishBatch(events []shared.DomainEvent) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Published = append(m.Published, events...)
	return nil
}

package loyalty

// ===========================
// 外部協作者介面（Ports）
// ===========================
//
// 帳本核心消費的外部能力：介面定義在 Domain Layer（使用者），
// 由 Infrastructure 或外部平台實作（依賴倒置原則）

// ProgramRegistry 方案註冊表介面（唯讀）
//
// 方案的生命週期（創建、規則、停用）由外部平台管理，
// 帳本核心只做一件事：入點前驗證方案確實屬於發點的商家
type ProgramRegistry interface {
	// ResolveOwner 解析方案的所屬商家
	// 返回：方案所屬的 BusinessID，或 ErrProgramNotFound（方案不存在）
	ResolveOwner(programID ProgramID) (BusinessID, error)
}

// NotificationKind 通知類型
type NotificationKind string

const (
	// NotificationPointsAwarded 入點成功通知
	NotificationPointsAwarded NotificationKind = "POINTS_AWARDED"

	// NotificationPointsRedeemed 兌換成功通知
	NotificationPointsRedeemed NotificationKind = "POINTS_REDEEMED"
)

// Notifier 通知器介面（fire-and-forget）
//
// 行為約定：
// - 在帳本事務提交「之後」調用，絕不在事務內（慢速通知不得持有帳本鎖）
// - 返回的錯誤由調用方記錄日誌後吞掉：
//   通知失敗永遠不會讓已提交的入點/兌換被報告為失敗，也不會觸發回滾
type Notifier interface {
	Notify(
		customerID CustomerID,
		kind NotificationKind,
		title string,
		message string,
		metadata map[string]interface{},
	) error
}

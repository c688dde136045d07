package loyalty

import (
	"github.com/sirupsen/logrus"

	"github.com/jackyeh168/loyalty_ledger/src/internal/config"
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// 提交後副作用（Post-Commit Side Effects）
// ===========================
//
// 事件發布與通知派送都發生在帳本事務提交「之後」：
// - 失敗只記錄日誌，絕不讓已提交的異動被報告為失敗
// - 絕不觸發回滾或重放餘額變更
// - 絕不在事務內調用（慢速副作用不得持有帳本鎖）

// publishEvents 發布領域事件（best-effort）
//
// publisher 可為 nil（未配置事件發布時跳過）
func publishEvents(logger *logrus.Logger, publisher shared.EventPublisher, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.PublishBatch(events); err != nil {
		logger.WithFields(logrus.Fields{
			"module": "loyalty",
			"events": len(events),
		}).WithError(err).Warn("failed to publish domain events after commit")
	}
}

// notifyCustomer 派送客戶通知（fire-and-forget）
//
// notifier 可為 nil（未配置通知器時跳過）
func notifyCustomer(
	logger *logrus.Logger,
	notifier loyalty.Notifier,
	customerID loyalty.CustomerID,
	kind loyalty.NotificationKind,
	title string,
	message string,
	metadata map[string]interface{},
) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(customerID, kind, title, message, metadata); err != nil {
		logger.WithFields(logrus.Fields{
			"module":      "loyalty",
			"customer_id": customerID.String(),
			"kind":        string(kind),
		}).WithError(err).Warn("failed to dispatch notification after commit")
	}
}

// resolveLogger 返回可用的 logger（未注入時使用全域配置的 logger）
func resolveLogger(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	return config.GetLogger()
}

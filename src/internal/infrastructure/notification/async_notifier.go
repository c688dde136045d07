package notification

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/loyalty"
)

// ===========================
// Async Notifier 實作
// ===========================

// defaultQueueSize 通知佇列容量
// 佇列滿時丟棄新通知（帳本寫路徑絕不因通知背壓而阻塞）
const defaultQueueSize = 256

// Sender 通知投遞介面
//
// 由外部通道實作（推播、簡訊、Email 等）；
// AsyncNotifier 只負責排隊與背景投遞，不關心具體通道
type Sender interface {
	Send(customerID string, kind string, title string, message string, metadata map[string]interface{}) error
}

// notification 佇列中的一筆待投遞通知
type notification struct {
	customerID string
	kind       string
	title      string
	message    string
	metadata   map[string]interface{}
}

// AsyncNotifier 非同步通知器
//
// 設計原則：
// - 實作 loyalty.Notifier 介面（fire-and-forget 約定）
// - Notify 只做入隊，立即返回；投遞由單一背景 worker 執行
// - 投遞失敗與佇列溢出都只記錄日誌，絕不向上傳播——
//   通知失敗永遠不會讓已提交的入點/兌換被報告為失敗
type AsyncNotifier struct {
	sender Sender
	logger *logrus.Logger

	queue chan notification
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewAsyncNotifier 創建通知器實例並啟動背景 worker
// logger 為 nil 時使用全域標準 logger
func NewAsyncNotifier(sender Sender, logger *logrus.Logger) *AsyncNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	n := &AsyncNotifier{
		sender: sender,
		logger: logger,
		queue:  make(chan notification, defaultQueueSize),
	}

	n.wg.Add(1)
	go n.deliverLoop()

	return n
}

// Notify 將通知排入佇列（非阻塞）
//
// 佇列滿時丟棄並記錄警告；返回值恆為 nil，
// 保留 error 簽名只為滿足介面
func (n *AsyncNotifier) Notify(
	customerID loyalty.CustomerID,
	kind loyalty.NotificationKind,
	title string,
	message string,
	metadata map[string]interface{},
) error {
	item := notification{
		customerID: customerID.String(),
		kind:       string(kind),
		title:      title,
		message:    message,
		metadata:   metadata,
	}

	select {
	case n.queue <- item:
	default:
		n.logger.WithFields(logrus.Fields{
			"module":      "notification",
			"customer_id": item.customerID,
			"kind":        item.kind,
		}).Warn("notification queue full, dropping notification")
	}

	return nil
}

// Close 關閉佇列並等待已排隊的通知投遞完畢
// 使用場景：服務優雅關閉
func (n *AsyncNotifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
	})
	n.wg.Wait()
}

// deliverLoop 背景投遞循環（單一 worker，佇列關閉後排空退出）
func (n *AsyncNotifier) deliverLoop() {
	defer n.wg.Done()

	for item := range n.queue {
		err := n.sender.Send(item.customerID, item.kind, item.title, item.message, item.metadata)
		if err != nil {
			n.logger.WithFields(logrus.Fields{
				"module":      "notification",
				"customer_id": item.customerID,
				"kind":        item.kind,
				"error":       err.Error(),
			}).Warn("failed to deliver notification")
		}
	}
}

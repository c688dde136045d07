package events

import (
	"github.com/sirupsen/logrus"

	"github.com/jackyeh168/loyalty_ledger/src/internal/domain/shared"
)

// ===========================
// Logrus EventPublisher 實作
// ===========================

// LogrusEventPublisher 以結構化日誌為載體的事件發布器
//
// 設計原則：
// - 實作 shared.EventPublisher 介面
// - 帳本核心不假設下游訊息基礎設施；以 JSON 結構化日誌輸出事件，
//   由日誌管線（收集器 / 轉發器）接手投遞
// - 發布永不失敗（日誌寫入即成功），符合「事後發布、失敗不回滾」的約定
type LogrusEventPublisher struct {
	logger *logrus.Logger
}

// NewLogrusEventPublisher 創建事件發布器實例
// logger 為 nil 時使用全域標準 logger
func NewLogrusEventPublisher(logger *logrus.Logger) shared.EventPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusEventPublisher{logger: logger}
}

// Publish 發布單一領域事件
func (p *LogrusEventPublisher) Publish(event shared.DomainEvent) error {
	p.logger.WithFields(logrus.Fields{
		"module":       "events",
		"event_id":     event.EventID(),
		"event_type":   event.EventType(),
		"aggregate_id": event.AggregateID(),
		"occurred_at":  event.OccurredAt(),
	}).Info("domain event published")
	return nil
}

// PublishBatch 發布一批領域事件（逐筆發布）
func (p *LogrusEventPublisher) PublishBatch(events []shared.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(event); err != nil {
			return err
		}
	}
	return nil
}

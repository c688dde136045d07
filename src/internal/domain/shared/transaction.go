package shared

// TransactionContext 事務上下文介面
//
// 設計決策：可選事務參與模式（Optional Transaction Participation）
//
// 行為約定：
// - ctx != nil: 在調用者的事務中執行（事務傳播）
// - ctx == nil: 使用 auto-commit 模式（適用於單一讀操作）
//
// 使用場景：
//
// 1. 寫操作：必須在事務中（通過 TransactionManager.InTransaction）
//    - 保證原子性（Atomicity）：餘額變更與流水記錄要麼都存在，要麼都不存在
//    - 支援回滾（Rollback on error）
//    - 例如：入點、兌換、首次報名
//
// 2. 讀操作：可選事務參與
//    - 獨立查詢：傳入 nil（性能優先，auto-commit 模式）
//    - 在事務中讀取：傳入調用者的 ctx（保證一致性）
//    - 例如：查詢流水（獨立）vs 兌換前查詢餘額（在事務中）
//
// Repository 方法約束指南：
//
// ✅ ctx 必須為 non-nil（寫操作需要事務保證）：
//    - GetOrCreate() - 報名不存在時新增
//    - AddPoints()   - 入點
//    - DeductPoints()- 扣點
//    - Append()      - 新增流水記錄
//
// ✅ ctx 可為 nil（讀操作可選事務參與）：
//    - Find()                 - 查詢單筆報名
//    - FindByFilter()         - 查詢流水
//    - SumDeltas()            - 對帳加總
//
// 原則：修改狀態的操作必須在事務中，查詢操作可選擇是否參與事務
//
// 範例：
//
// 寫操作（必須在事務中）：
//   txManager.InTransaction(func(ctx TransactionContext) error {
//       balance, err := enrollments.AddPoints(ctx, customerID, programID, amount)
//       if err != nil {
//           return err
//       }
//       return transactions.Append(ctx, entry)
//   })
//
// 讀操作（獨立查詢，不需要事務）：
//   enrollment, _ := enrollments.Find(nil, customerID, programID)
//
// 架構原則：
// - 這是一個標記介面（Marker Interface），不暴露任何方法
// - Infrastructure Layer 負責實作具體的事務封裝（如 GORM, SQL）
// - Domain Layer 和 Application Layer 只依賴此介面，不依賴具體實作
// - 保持依賴方向：Infrastructure → Domain（依賴倒置原則）
type TransactionContext interface {
	// 標記介面：僅用於傳遞上下文，不暴露方法
}

// TransactionManager 事務管理器介面
type TransactionManager interface {
	InTransaction(fn func(ctx TransactionContext) error) error
}

package workflow

import "context"

// Store 工作流持久化接口
type Store interface {
	// Transaction 在单个事务内执行 fn,fn 返回错误时整个事务回滚
	Transaction(ctx context.Context, fn func(tx Tx) error) error
	Get(ctx context.Context, kind Kind, id string) (Record, error)
	// History 按时间倒序返回历史,时间相同时按 Sequence 倒序
	History(ctx context.Context, kind Kind, id string) ([]HistoryEntry, error)
}

// Tx 事务内的读写操作
type Tx interface {
	// Load 记录不存在时返回 NotFound
	Load(ctx context.Context, kind Kind, id string) (Record, error)
	// LoadMany 一次查询加载多条记录,不存在的 ID 不出现在结果中
	LoadMany(ctx context.Context, kind Kind, ids []string) (map[string]Record, error)
	Insert(ctx context.Context, rec Record) error
	// Save 以记录当前版本做乐观锁更新,成功后版本号加一
	// 版本不匹配时返回 ConcurrentModification
	Save(ctx context.Context, rec Record) error
	AppendHistory(ctx context.Context, entries ...HistoryEntry) error
}

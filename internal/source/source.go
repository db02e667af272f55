package source

import "context"

// Record 外部数据源中的一条原始记录。
// 字段是松散类型的：同一列在不同行里可能是字符串、数字、数组或缺失。
type Record struct {
	ID          string                 // 源端分配的稳定记录标识（去重键）
	CreatedTime string                 // 源端创建时间（原样透传）
	Fields      map[string]interface{} // 字段名 -> 原始值
}

// TableReader 外部表格数据源的读取能力。
// 实现方负责翻页，把一张逻辑表的所有记录取完再返回。
type TableReader interface {
	ListRecords(ctx context.Context, table string) ([]Record, error)
}

package contract

import "context"

// Table: 装载器输出的中性表格——有序列名 + 字符串单元格行。
// 约束：
// 1) 首行表头即 Columns，数据行与其等宽（短行以空串补齐由实现负责）；
// 2) 单元格一律为显示文本，不做类型推断；
// 3) 构建后只读。
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex: 按表头原文精确查找列下标；不存在返回 -1。
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Empty: 无数据行即为空（仅表头不算有数据）。
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Cell: 取第 row 行 col 列单元格；越界返回空串（短行视为空单元格）。
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// TableLoader: 表格数据源抽象（xlsx/csv）。
// 约束：
// 1) 单次调用读完整个表，不做流式分批；
// 2) 只负责解码与表格化，不做业务校验（必要列检查在编排层）；
// 3) ctx 取消/超时需尽快返回；
// 4) 不在内部起并发。
type TableLoader interface {
	Load(ctx context.Context, path string) (*Table, error)
}

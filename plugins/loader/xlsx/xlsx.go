// Package xlsx 实现基于 excelize 的表格装载器。
// 读取工作簿单个工作表的全部已用行：首行为表头，其余为数据行；
// 单元格取 excelize 的格式化文本，不做类型推断。
package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"tilemeta/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// Sheet: 工作表名；空则取第一个工作表。
	Sheet string `json:"sheet"`
}

// Loader 实现 contract.TableLoader。
type Loader struct {
	sheet string
}

// New 创建 xlsx 装载器。
func New(opts *Options) *Loader {
	sheet := ""
	if opts != nil {
		sheet = strings.TrimSpace(opts.Sheet)
	}
	return &Loader{sheet: sheet}
}

var _ contract.TableLoader = (*Loader)(nil)

// Load 一次性读完整个工作表。
// 短行以空串补齐到表头宽度；长于表头的尾部单元格丢弃（与表头对齐）。
func (l *Loader) Load(ctx context.Context, path string) (*contract.Table, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheet", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s!%s: %w", path, sheet, err)
	}
	if len(rows) == 0 {
		return &contract.Table{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = strings.TrimSpace(c)
	}
	data := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		row := make([]string, len(header))
		for i := range header {
			if i < len(r) {
				row[i] = r[i]
			}
		}
		data = append(data, row)
	}
	return &contract.Table{Columns: header, Rows: data}, nil
}

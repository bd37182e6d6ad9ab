// Package csvfile 实现 CSV 表格装载器。
// 历史数据多为 GB18030/GBK 编码导出，解码经 x/text 转换后再做 CSV 解析；
// utf8 输入容忍 BOM。
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"tilemeta/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// Encoding: 源编码，utf8（默认）| gb18030 | gbk。
	Encoding string `json:"encoding"`
	// Comma: 字段分隔符（单字符）；空则逗号。
	Comma string `json:"comma"`
}

// Loader 实现 contract.TableLoader。
type Loader struct {
	enc   encoding.Encoding // nil 表示 utf8
	comma rune
}

// New 创建 CSV 装载器；未知编码名拒绝。
func New(opts *Options) (*Loader, error) {
	name := "utf8"
	comma := ','
	if opts != nil {
		if s := strings.ToLower(strings.TrimSpace(opts.Encoding)); s != "" {
			name = s
		}
		if opts.Comma != "" {
			rs := []rune(opts.Comma)
			if len(rs) != 1 {
				return nil, fmt.Errorf("csv loader: comma must be a single rune, got %q", opts.Comma)
			}
			comma = rs[0]
		}
	}
	var enc encoding.Encoding
	switch name {
	case "utf8", "utf-8":
		enc = nil
	case "gb18030":
		enc = simplifiedchinese.GB18030
	case "gbk":
		enc = simplifiedchinese.GBK
	default:
		return nil, fmt.Errorf("csv loader: unsupported encoding %q", name)
	}
	return &Loader{enc: enc, comma: comma}, nil
}

var _ contract.TableLoader = (*Loader)(nil)

// Load 一次性读完整个文件。首行表头；短行以空串补齐到表头宽度。
func (l *Loader) Load(ctx context.Context, path string) (*contract.Table, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	var src io.Reader = bufio.NewReader(f)
	if l.enc != nil {
		src = transform.NewReader(src, l.enc.NewDecoder())
	} else {
		src = stripBOM(src.(*bufio.Reader))
	}

	cr := csv.NewReader(src)
	cr.Comma = l.comma
	cr.FieldsPerRecord = -1 // 行宽交由表格层补齐
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(all) == 0 {
		return &contract.Table{}, nil
	}
	header := make([]string, len(all[0]))
	for i, c := range all[0] {
		header[i] = strings.TrimSpace(c)
	}
	data := make([][]string, 0, len(all)-1)
	for _, r := range all[1:] {
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

// stripBOM 去除 UTF-8 BOM（常见于 Excel 另存的 csv）。
func stripBOM(r *bufio.Reader) io.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

// Package template 实现模板工作簿写出端：
// 每个图幅复制一份模板 xlsx，按固定单元格映射填入记录字段。
package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tilemeta/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// TemplatePath: 模板工作簿路径（必需）。
	TemplatePath string `json:"template_path"`
	// OutputDir: 输出目录（必需；不存在则创建）。
	OutputDir string `json:"output_dir"`
}

// Writer 实现 contract.RecordWriter。
type Writer struct {
	templatePath string
	outputDir    string
}

// cellMap: 单元格 → 字段键的固定映射（沿用模板既有排布，不可调整）。
var cellMap = []struct {
	cell  string
	field string
}{
	{"A1", "filename"},
	{"C8", "file_name"},
	{"C17", "tif_size"},
	{"C20", "WS_X"}, {"C21", "WS_Y"},
	{"C22", "WN_X"}, {"C23", "WN_Y"},
	{"C24", "EN_X"}, {"C25", "EN_Y"},
	{"C26", "ES_X"}, {"C27", "ES_Y"},
	{"C35", "central_meridian"},
	{"C37", "band_number"},
	{"C41", "Link_W"},
	{"C42", "Link_N"},
	{"C43", "Link_E"},
	{"C44", "Link_S"},
	{"C45", "filename_WN"},
	{"C46", "filename_N"},
	{"C47", "filename_EN"},
	{"C48", "filename_W"},
	{"C49", "filename_E"},
	{"C50", "filename_WS"},
	{"C51", "filename_S"},
	{"C52", "filename_ES"},
	{"C68", "flight_times"},
}

// New 创建模板写出端。
func New(opts *Options) (*Writer, error) {
	if opts == nil || strings.TrimSpace(opts.TemplatePath) == "" || strings.TrimSpace(opts.OutputDir) == "" {
		return nil, os.ErrInvalid
	}
	return &Writer{
		templatePath: strings.TrimSpace(opts.TemplatePath),
		outputDir:    strings.TrimSpace(opts.OutputDir),
	}, nil
}

var _ contract.RecordWriter = (*Writer)(nil)

// Write 为每条记录生成一份输出工作簿。
// 任何单个文件失败即中止（半成品输出目录由调用方整体作废）。
func (w *Writer) Write(ctx context.Context, rs *contract.RecordSet) error {
	// 模板先验：不可读/无工作表时在复制任何文件前失败。
	tf, err := excelize.OpenFile(w.templatePath)
	if err != nil {
		return fmt.Errorf("template %s: %v: %w", w.templatePath, err, contract.ErrTemplateInvalid)
	}
	sheet := tf.GetSheetName(0)
	_ = tf.Close()
	if sheet == "" {
		return fmt.Errorf("template %s has no sheet: %w", w.templatePath, contract.ErrTemplateInvalid)
	}

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for i := range rs.Records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r := &rs.Records[i]
		name := r.OutName + ".xlsx"
		if r.OutName == "" || !filepath.IsLocal(name) {
			return fmt.Errorf("output name %q: %w", r.OutName, contract.ErrPathInvalid)
		}
		if err := w.writeOne(r, sheet, filepath.Join(w.outputDir, name)); err != nil {
			return fmt.Errorf("tile %s: %w", r.ID, err)
		}
	}
	return nil
}

// writeOne 复制模板并填入单条记录。每次重新打开模板，避免跨图幅残留。
func (w *Writer) writeOne(r *contract.TileRecord, sheet, dest string) error {
	f, err := excelize.OpenFile(w.templatePath)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	fields := r.Fields()
	for _, m := range cellMap {
		if err := f.SetCellStr(sheet, m.cell, fields[m.field]); err != nil {
			return fmt.Errorf("set %s: %w", m.cell, err)
		}
	}
	if err := f.SaveAs(dest); err != nil {
		return fmt.Errorf("save %s: %w", dest, err)
	}
	return nil
}

package template

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"tilemeta/pkg/contract"
)

// writeTemplate 生成最小模板工作簿（空表即可，映射单元格由写出端填入）。
func writeTemplate(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellStr("Sheet1", "B8", "图幅名称"); err != nil {
		t.Fatalf("写模板失败: %v", err)
	}
	path := filepath.Join(t.TempDir(), "template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("保存模板失败: %v", err)
	}
	return path
}

func sampleRecord() contract.TileRecord {
	return contract.TileRecord{
		Index:    0,
		ID:       "3456.0-51437.0",
		Coord:    contract.GridCoord{Row: 3456, Col: 51437},
		RowField: "3456",
		ColField: "51437",
		Band:     51,
		Meridian: 153,
		Corners: contract.Corners{
			WS: contract.Corner{X: "3456000.00", Y: "51437000.00"},
			WN: contract.Corner{X: "3457000.00", Y: "51437000.00"},
			EN: contract.Corner{X: "3457000.00", Y: "51438000.00"},
			ES: contract.Corner{X: "3456000.00", Y: "51438000.00"},
		},
		SizeText:   "1.00MB",
		FlightTime: "2024-05",
		Links: contract.CardinalLinks{
			N: contract.EdgeLink{Status: contract.StatusLinked, Name: "3457.0-51437.0"},
			S: contract.EdgeLink{Status: contract.StatusFreeEdge, Name: contract.NoNeighbor},
			E: contract.EdgeLink{Status: contract.StatusFreeEdge, Name: contract.NoNeighbor},
			W: contract.EdgeLink{Status: contract.StatusFreeEdge, Name: contract.NoNeighbor},
		},
		Diagonals: contract.DiagonalNames{
			WN: contract.NoNeighbor, EN: contract.NoNeighbor,
			WS: contract.NoNeighbor, ES: contract.NoNeighbor,
		},
		Display: "文件:3456.0-51437.0",
		OutName: "3456.0-51437.0",
	}
}

// TestWrite 每条记录一份输出；按固定单元格映射核对填入值。
func TestWrite(t *testing.T) {
	tpl := writeTemplate(t)
	out := filepath.Join(t.TempDir(), "out")
	w, err := New(&Options{TemplatePath: tpl, OutputDir: out})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	rec := sampleRecord()
	rs := &contract.RecordSet{Total: 1, Records: []contract.TileRecord{rec}}
	if err := w.Write(context.Background(), rs); err != nil {
		t.Fatalf("写出失败: %v", err)
	}

	dest := filepath.Join(out, "3456.0-51437.0.xlsx")
	f, err := excelize.OpenFile(dest)
	if err != nil {
		t.Fatalf("打开输出失败: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)

	want := map[string]string{
		"A1":  "文件:3456.0-51437.0",
		"C8":  "3456.0-51437.0",
		"C17": "1.00MB",
		"C20": "3456000.00",
		"C21": "51437000.00",
		"C24": "3457000.00",
		"C25": "51438000.00",
		"C35": "153°",
		"C37": "51°",
		"C41": contract.StatusFreeEdge,
		"C42": contract.StatusLinked,
		"C46": "3457.0-51437.0",
		"C48": contract.NoNeighbor,
		"C68": "2024-05",
	}
	for cell, exp := range want {
		got, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("读单元格 %s 失败: %v", cell, err)
		}
		if got != exp {
			t.Fatalf("单元格 %s = %q，预期 %q", cell, got, exp)
		}
	}
	// 模板既有内容保留
	if got, _ := f.GetCellValue(sheet, "B8"); got != "图幅名称" {
		t.Fatalf("模板既有单元格被破坏: %q", got)
	}
}

// TestWriteTemplateInvalid 模板不可读在复制任何文件前失败。
func TestWriteTemplateInvalid(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.xlsx")
	if err := os.WriteFile(bad, []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("写文件失败: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out")
	w, err := New(&Options{TemplatePath: bad, OutputDir: out})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	rs := &contract.RecordSet{Total: 1, Records: []contract.TileRecord{sampleRecord()}}
	if err := w.Write(context.Background(), rs); !errors.Is(err, contract.ErrTemplateInvalid) {
		t.Fatalf("预期 ErrTemplateInvalid，得到 %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("模板先验失败后不得创建输出目录")
	}
}

// TestWritePathInvalid 输出名越界（空名或路径穿越）拒绝。
func TestWritePathInvalid(t *testing.T) {
	tpl := writeTemplate(t)
	out := filepath.Join(t.TempDir(), "out")
	w, _ := New(&Options{TemplatePath: tpl, OutputDir: out})

	rec := sampleRecord()
	rec.OutName = ""
	rs := &contract.RecordSet{Total: 1, Records: []contract.TileRecord{rec}}
	if err := w.Write(context.Background(), rs); !errors.Is(err, contract.ErrPathInvalid) {
		t.Fatalf("空输出名预期 ErrPathInvalid，得到 %v", err)
	}

	rec2 := sampleRecord()
	rec2.OutName = ".." + string(filepath.Separator) + "escape"
	rs2 := &contract.RecordSet{Total: 1, Records: []contract.TileRecord{rec2}}
	if err := w.Write(context.Background(), rs2); !errors.Is(err, contract.ErrPathInvalid) {
		t.Fatalf("路径穿越预期 ErrPathInvalid，得到 %v", err)
	}
}

// TestWriteEmptySet 空成功子集：只做模板先验，不产出文件。
func TestWriteEmptySet(t *testing.T) {
	tpl := writeTemplate(t)
	out := filepath.Join(t.TempDir(), "out")
	w, _ := New(&Options{TemplatePath: tpl, OutputDir: out})
	if err := w.Write(context.Background(), &contract.RecordSet{}); err != nil {
		t.Fatalf("空集写出失败: %v", err)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("读输出目录失败: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("空集不应产出文件: %v", entries)
	}
}

// TestNewRejects 缺必需选项拒绝。
func TestNewRejects(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("nil 选项应拒绝")
	}
	if _, err := New(&Options{TemplatePath: "t.xlsx"}); err == nil {
		t.Fatalf("缺输出目录应拒绝")
	}
	if _, err := New(&Options{OutputDir: "out"}); err == nil {
		t.Fatalf("缺模板路径应拒绝")
	}
}

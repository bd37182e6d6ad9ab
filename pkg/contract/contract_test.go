package contract

import (
	"errors"
	"fmt"
	"testing"
)

// TestSanitizeName 验证输出名清洗逻辑。
func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"普通标识", "3456.0-51437.0", "3456.0-51437.0"},
		{"反斜杠", `a\b`, "a_b"},
		{"正斜杠", "a/b", "a_b"},
		{"星号", "a*b", "a_b"},
		{"问号", "a?b", "a_b"},
		{"冒号", "a:b", "a_b"},
		{"双引号", `a"b`, "a_b"},
		{"尖括号", "a<b>c", "a_b_c"},
		{"竖线", "a|b", "a_b"},
		{"首尾空白", "  3456.0-51437.0  ", "3456.0-51437.0"},
		{"全禁用字符", `\/*?:"<>|`, "_________"},
		{"中文保留", "图幅:3456", "图幅_3456"},
		{"空串", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, 预期 %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestDisplayName 验证模板标题字段格式。
func TestDisplayName(t *testing.T) {
	if got := DisplayName(TileID("3456.0-51437.0")); got != "文件:3456.0-51437.0" {
		t.Fatalf("DisplayName 错误: %q", got)
	}
}

// TestTableColumnIndex 验证列查找与单元格取值。
func TestTableColumnIndex(t *testing.T) {
	tb := &Table{
		Columns: []string{"MapIndex", "time", "备注"},
		Rows:    [][]string{{"3456.0-51437.0", "2024-05"}, {"3457.0-51437.0", "2024-06", "x"}},
	}
	if tb.ColumnIndex("MapIndex") != 0 || tb.ColumnIndex("time") != 1 {
		t.Fatalf("已知列下标错误")
	}
	if tb.ColumnIndex("mapindex") != -1 {
		t.Fatalf("列名匹配必须精确区分大小写")
	}
	if tb.Empty() {
		t.Fatalf("有数据行不应为空")
	}
	if got := tb.Cell(0, 2); got != "" {
		t.Fatalf("短行越界单元格应为空串, got %q", got)
	}
	if got := tb.Cell(1, 2); got != "x" {
		t.Fatalf("单元格取值错误: %q", got)
	}
	var nilTable *Table
	if !nilTable.Empty() {
		t.Fatalf("nil 表应为空")
	}
}

// mkRecord 构造最小合法记录，测试辅助。
func mkRecord(index int, id string) TileRecord {
	return TileRecord{
		Index:   index,
		ID:      TileID(id),
		OutName: SanitizeName(id),
		Display: DisplayName(TileID(id)),
	}
}

// TestValidateRecordSetSuccess 验证合法记录集通过门闩。
func TestValidateRecordSetSuccess(t *testing.T) {
	rs := &RecordSet{
		Total:   3,
		Records: []TileRecord{mkRecord(0, "3456.0-51437.0"), mkRecord(2, "3457.0-51437.0")},
		Errors:  []TileError{{Index: 1, ID: "bad", Err: ErrMalformedIdentifier}},
	}
	if err := ValidateRecordSet(rs); err != nil {
		t.Fatalf("合法记录集被拒: %v", err)
	}
}

// TestValidateRecordSetErrors 覆盖各类拒绝分支。
func TestValidateRecordSetErrors(t *testing.T) {
	cases := []struct {
		name string
		rs   *RecordSet
		want error
	}{
		{"nil 记录集", nil, ErrInvariantViolation},
		{"划分不全", &RecordSet{Total: 3, Records: []TileRecord{mkRecord(0, "a")}}, ErrInconsistentFieldLength},
		{"行序错乱", &RecordSet{Total: 2, Records: []TileRecord{mkRecord(1, "3456.0-51437.0"), mkRecord(0, "3457.0-51437.0")}}, ErrInvariantViolation},
		{"下标越界", &RecordSet{Total: 1, Records: []TileRecord{mkRecord(5, "a")}}, ErrInvariantViolation},
		{"行重复占用", &RecordSet{
			Total:   2,
			Records: []TileRecord{mkRecord(0, "a")},
			Errors:  []TileError{{Index: 0, ID: "a", Err: ErrMalformedIdentifier}},
		}, ErrInvariantViolation},
		{"输出名重复", &RecordSet{
			Total:   2,
			Records: []TileRecord{mkRecord(0, "a/b"), mkRecord(1, "a_b")},
		}, ErrDuplicateIdentifier},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecordSet(tt.rs)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v got %v", tt.want, err)
			}
		})
	}
}

// TestColumnsProjection 验证列式投影与字段键集对齐。
func TestColumnsProjection(t *testing.T) {
	r := TileRecord{
		Index:      0,
		ID:         "3456.0-51437.0",
		RowField:   "3456",
		ColField:   "51437",
		Band:       51,
		Meridian:   153,
		SizeText:   "12.34MB",
		FlightTime: "2024-05",
		Corners: Corners{
			WS: Corner{X: "3456000.00", Y: "51437000.00"},
			WN: Corner{X: "3457000.00", Y: "51437000.00"},
			EN: Corner{X: "3457000.00", Y: "51438000.00"},
			ES: Corner{X: "3456000.00", Y: "51438000.00"},
		},
		Links: CardinalLinks{
			N: EdgeLink{Status: StatusLinked, Name: "3457.0-51437.0"},
			S: EdgeLink{Status: StatusFreeEdge, Name: NoNeighbor},
			E: EdgeLink{Status: StatusFreeEdge, Name: NoNeighbor},
			W: EdgeLink{Status: StatusFreeEdge, Name: NoNeighbor},
		},
		Diagonals: DiagonalNames{WN: NoNeighbor, EN: "3457.0-51438.0", WS: NoNeighbor, ES: NoNeighbor},
		Display:   "文件:3456.0-51437.0",
		OutName:   "3456.0-51437.0",
	}
	rs := &RecordSet{Total: 1, Records: []TileRecord{r}}
	cols := rs.Columns()

	if len(cols) != len(FieldNames) {
		t.Fatalf("投影字段数 %d != 键集 %d", len(cols), len(FieldNames))
	}
	for _, name := range FieldNames {
		col, ok := cols[name]
		if !ok {
			t.Fatalf("缺少字段 %s", name)
		}
		if len(col) != 1 {
			t.Fatalf("字段 %s 长度 %d", name, len(col))
		}
	}
	checks := map[string]string{
		"file_name":        "3456.0-51437.0",
		"band_number":      "51°",
		"central_meridian": "153°",
		"WS_X":             "3456000.00",
		"ES_Y":             "51438000.00",
		"tif_size":         "12.34MB",
		"Link_N":           "已接",
		"filename_N":       "3457.0-51437.0",
		"Link_S":           "自由边",
		"filename_S":       "无",
		"filename_EN":      "3457.0-51438.0",
		"filename":         "文件:3456.0-51437.0",
		"flight_times":     "2024-05",
	}
	for name, want := range checks {
		if got := cols[name][0]; got != want {
			t.Errorf("字段 %s = %q, 预期 %q", name, got, want)
		}
	}
}

// TestFieldsCoversFieldNames 验证写出视图与键集一一对应。
func TestFieldsCoversFieldNames(t *testing.T) {
	r := mkRecord(0, "3456.0-51437.0")
	f := r.Fields()
	if len(f) != len(FieldNames) {
		t.Fatalf("Fields 键数 %d != FieldNames %d", len(f), len(FieldNames))
	}
	for _, name := range FieldNames {
		if _, ok := f[name]; !ok {
			t.Fatalf("Fields 缺少键 %s", name)
		}
	}
}

// TestDegreeSuffix 验证带号与中央经线的写出格式。
func TestDegreeSuffix(t *testing.T) {
	r := TileRecord{Band: 51, Meridian: 153}
	f := r.Fields()
	if f["band_number"] != fmt.Sprintf("%d°", 51) || f["central_meridian"] != "153°" {
		t.Fatalf("度数后缀格式错误: %q %q", f["band_number"], f["central_meridian"])
	}
}

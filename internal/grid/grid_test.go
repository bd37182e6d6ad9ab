package grid

import (
	"errors"
	"testing"

	"tilemeta/pkg/contract"
)

// TestParseIdentifier 按固定偏移切片验证行/列/带号/中央经线。
func TestParseIdentifier(t *testing.T) {
	p, err := ParseIdentifier("3456.0-51437.0")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if p.Coord.Row != 3456 || p.Coord.Col != 51437 {
		t.Fatalf("坐标错误: %+v", p.Coord)
	}
	if p.RowField != "3456" || p.ColField != "51437" {
		t.Fatalf("原始子串错误: %q %q", p.RowField, p.ColField)
	}
	if p.Band != 51 || p.Meridian != 153 {
		t.Fatalf("带号/经线错误: %d %d", p.Band, p.Meridian)
	}
}

// TestParseIdentifierLeadingZero 前导零保留在原始子串中，数值按十进制解析。
func TestParseIdentifierLeadingZero(t *testing.T) {
	p, err := ParseIdentifier("0456.0-05437.0")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if p.RowField != "0456" || p.Coord.Row != 456 {
		t.Fatalf("前导零处理错误: %q %d", p.RowField, p.Coord.Row)
	}
	if p.ColField != "05437" || p.Coord.Col != 5437 {
		t.Fatalf("前导零处理错误: %q %d", p.ColField, p.Coord.Col)
	}
	if p.Band != 5 {
		t.Fatalf("带号错误: %d", p.Band)
	}
}

// TestParseIdentifierMalformed 长度不足或数字字段不可解析一律 ErrMalformedIdentifier。
func TestParseIdentifierMalformed(t *testing.T) {
	bad := []contract.TileID{
		"",                // 空串
		"3456",            // 短于最小长度
		"3456.0-514",      // 列字段截断
		"abcd.0-51437.0",  // 行字段非数字
		"3456.0-5x437.0",  // 列字段非数字
		"3456.0-5.437.0",  // 列字段含小数点
	}
	for _, id := range bad {
		if _, err := ParseIdentifier(id); !errors.Is(err, contract.ErrMalformedIdentifier) {
			t.Fatalf("标识 %q 预期 ErrMalformedIdentifier，得到 %v", id, err)
		}
	}
	// 中段 [4,7) 不做检查：任意填充字符可接受
	if _, err := ParseIdentifier("3456xyz51437.0"); err != nil {
		t.Fatalf("中段字符不应参与校验: %v", err)
	}
}

// TestCanonicalName 规范名与真实标识同形（不保留前导零）。
func TestCanonicalName(t *testing.T) {
	if got := CanonicalName(contract.GridCoord{Row: 3456, Col: 51437}); got != "3456.0-51437.0" {
		t.Fatalf("规范名错误: %q", got)
	}
	if got := CanonicalName(contract.GridCoord{Row: 1, Col: 2}); got != "1.0-2.0" {
		t.Fatalf("规范名错误: %q", got)
	}
}

// TestDeriveCorners 四角点 = 网格坐标 × 1000，两位小数文本。
func TestDeriveCorners(t *testing.T) {
	c := DeriveCorners(contract.GridCoord{Row: 12, Col: 34})
	want := contract.Corners{
		WS: contract.Corner{X: "12000.00", Y: "34000.00"},
		WN: contract.Corner{X: "13000.00", Y: "34000.00"},
		EN: contract.Corner{X: "13000.00", Y: "35000.00"},
		ES: contract.Corner{X: "12000.00", Y: "35000.00"},
	}
	if c != want {
		t.Fatalf("角点错误:\n得到 %+v\n预期 %+v", c, want)
	}
}

// TestDeriveCornersZero 零坐标同样全定义。
func TestDeriveCornersZero(t *testing.T) {
	c := DeriveCorners(contract.GridCoord{})
	if c.WS.X != "0.00" || c.EN.Y != "1000.00" {
		t.Fatalf("零坐标角点错误: %+v", c)
	}
}

// TestShiftTable 8 方向偏移逐值核对（文件名交叉引用依赖该表自洽）。
func TestShiftTable(t *testing.T) {
	tests := []struct {
		name   string
		s      shift
		dr, dc int
	}{
		{"N", shiftN, +1, 0},
		{"S", shiftS, -1, 0},
		{"E", shiftE, 0, +1},
		{"W", shiftW, 0, -1},
		{"WN", shiftWN, +1, -1},
		{"EN", shiftEN, +1, +1},
		{"WS", shiftWS, -1, -1},
		{"ES", shiftES, -1, +1},
	}
	for _, tt := range tests {
		if tt.s.dr != tt.dr || tt.s.dc != tt.dc {
			t.Fatalf("方向 %s 偏移错误: (%d,%d) 预期 (%d,%d)",
				tt.name, tt.s.dr, tt.s.dc, tt.dr, tt.dc)
		}
	}
}

// TestBuildIndex 重复坐标自然合并；任一行解析失败整体拒绝。
func TestBuildIndex(t *testing.T) {
	idx, err := BuildIndex([]contract.TileID{
		"3456.0-51437.0",
		"3457.0-51437.0",
		"3456.0-51437.0", // 重复
	})
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("去重后应为 2，得到 %d", idx.Len())
	}
	if !idx.Has(contract.GridCoord{Row: 3456, Col: 51437}) {
		t.Fatalf("成员判定缺失")
	}
	if idx.Has(contract.GridCoord{Row: 9999, Col: 51437}) {
		t.Fatalf("不存在坐标不应命中")
	}

	if _, err := BuildIndex([]contract.TileID{"3456.0-51437.0", "bad"}); !errors.Is(err, contract.ErrMalformedIdentifier) {
		t.Fatalf("参照集含坏行必须整体拒绝，得到 %v", err)
	}
}

// TestResolveConnected 南北相邻：双向各自判定对方为已接，文件名互指。
func TestResolveConnected(t *testing.T) {
	idx, err := BuildIndex([]contract.TileID{"3456.0-51437.0", "3457.0-51437.0"})
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}

	links, _ := Resolve(contract.GridCoord{Row: 3456, Col: 51437}, idx)
	if links.N.Status != contract.StatusLinked || links.N.Name != "3457.0-51437.0" {
		t.Fatalf("北向接边错误: %+v", links.N)
	}
	if links.S.Status != contract.StatusFreeEdge || links.S.Name != contract.NoNeighbor {
		t.Fatalf("南向应为自由边: %+v", links.S)
	}

	links2, _ := Resolve(contract.GridCoord{Row: 3457, Col: 51437}, idx)
	if links2.S.Status != contract.StatusLinked || links2.S.Name != "3456.0-51437.0" {
		t.Fatalf("反向南向接边错误: %+v", links2.S)
	}
	if links2.N.Status != contract.StatusFreeEdge {
		t.Fatalf("反向北向应为自由边: %+v", links2.N)
	}
}

// TestResolveDiagonal 对角仅产出文件名，无状态。
func TestResolveDiagonal(t *testing.T) {
	idx, err := BuildIndex([]contract.TileID{"3457.0-51438.0"})
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	links, diags := Resolve(contract.GridCoord{Row: 3456, Col: 51437}, idx)
	if diags.EN != "3457.0-51438.0" {
		t.Fatalf("东北对角文件名错误: %q", diags.EN)
	}
	if diags.WN != contract.NoNeighbor || diags.WS != contract.NoNeighbor || diags.ES != contract.NoNeighbor {
		t.Fatalf("缺席对角应为占位: %+v", diags)
	}
	// 对角存在不影响基数方向判定
	if links.N.Status != contract.StatusFreeEdge || links.E.Status != contract.StatusFreeEdge {
		t.Fatalf("基数方向不应受对角影响: %+v", links)
	}
}

// TestResolveEmptyIndex 空参照集：四边自由边、八方向占位。
func TestResolveEmptyIndex(t *testing.T) {
	idx, err := BuildIndex(nil)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	links, diags := Resolve(contract.GridCoord{Row: 1, Col: 2}, idx)
	for _, e := range []contract.EdgeLink{links.N, links.S, links.E, links.W} {
		if e.Status != contract.StatusFreeEdge || e.Name != contract.NoNeighbor {
			t.Fatalf("空参照集基数方向错误: %+v", e)
		}
	}
	for _, n := range []string{diags.WN, diags.EN, diags.WS, diags.ES} {
		if n != contract.NoNeighbor {
			t.Fatalf("空参照集对角错误: %q", n)
		}
	}
}

// TestDerive 单图幅纯推导端到端（不含行序与大小，属编排层）。
func TestDerive(t *testing.T) {
	idx, err := BuildIndex([]contract.TileID{"3457.0-51437.0"})
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	rec, err := Derive("3456.0-51437.0", "2024-05", idx)
	if err != nil {
		t.Fatalf("推导失败: %v", err)
	}
	if rec.ID != "3456.0-51437.0" || rec.Band != 51 || rec.Meridian != 153 {
		t.Fatalf("基础字段错误: %+v", rec)
	}
	if rec.Corners.WS.X != "3456000.00" || rec.Corners.EN.Y != "51438000.00" {
		t.Fatalf("角点错误: %+v", rec.Corners)
	}
	if rec.Links.N.Status != contract.StatusLinked || rec.Links.N.Name != "3457.0-51437.0" {
		t.Fatalf("接边错误: %+v", rec.Links)
	}
	if rec.FlightTime != "2024-05" {
		t.Fatalf("飞行时间必须原样透传: %q", rec.FlightTime)
	}
	if rec.Display != "文件:3456.0-51437.0" || rec.OutName != "3456.0-51437.0" {
		t.Fatalf("显示名/输出名错误: %q %q", rec.Display, rec.OutName)
	}

	if _, err := Derive("bad", "", idx); !errors.Is(err, contract.ErrMalformedIdentifier) {
		t.Fatalf("坏标识预期 ErrMalformedIdentifier，得到 %v", err)
	}
}

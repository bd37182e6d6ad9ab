// Package grid 实现图幅网格核心推导：标识解析、角点坐标、参照集与接边判定。
// 全部为纯内存计算，构建后的参照集只读；任何 I/O 都在包外完成。
package grid

import (
	"fmt"
	"strconv"

	"tilemeta/pkg/contract"
)

// 标识采用固定偏移切片（非分隔符扫描）：
// [0,4) 行号、[7,9) 带号、[7,12) 完整列字段；[4,7) 不检查。
const (
	rowFieldEnd   = 4
	colFieldFrom  = 7
	bandFieldEnd  = 9
	colFieldEnd   = 12
	minIdentLen   = colFieldEnd
	meridianRatio = 3 // 中央经线 = 带号 × 3（度）
)

// Parsed: 标识解析结果。RowField/ColField 保留原始子串（含前导零）。
type Parsed struct {
	Coord    contract.GridCoord
	RowField string
	ColField string
	Band     int
	Meridian int
}

// ParseIdentifier 按固定偏移解析图幅标识。纯函数，无副作用。
// 长度不足或数字子字段不可解析均以 ErrMalformedIdentifier 拒绝。
func ParseIdentifier(id contract.TileID) (Parsed, error) {
	s := string(id)
	if len(s) < minIdentLen {
		return Parsed{}, fmt.Errorf("identifier %q shorter than %d chars: %w",
			s, minIdentLen, contract.ErrMalformedIdentifier)
	}
	rowField := s[:rowFieldEnd]
	colField := s[colFieldFrom:colFieldEnd]

	row, err := strconv.Atoi(rowField)
	if err != nil {
		return Parsed{}, fmt.Errorf("identifier %q row field %q not numeric: %w",
			s, rowField, contract.ErrMalformedIdentifier)
	}
	col, err := strconv.Atoi(colField)
	if err != nil {
		return Parsed{}, fmt.Errorf("identifier %q column field %q not numeric: %w",
			s, colField, contract.ErrMalformedIdentifier)
	}
	band, err := strconv.Atoi(s[colFieldFrom:bandFieldEnd])
	if err != nil {
		return Parsed{}, fmt.Errorf("identifier %q band field %q not numeric: %w",
			s, s[colFieldFrom:bandFieldEnd], contract.ErrMalformedIdentifier)
	}

	return Parsed{
		Coord:    contract.GridCoord{Row: row, Col: col},
		RowField: rowField,
		ColField: colField,
		Band:     band,
		Meridian: band * meridianRatio,
	}, nil
}

// CanonicalName 生成网格坐标的规范文件名（邻幅交叉引用与真实标识同形）。
func CanonicalName(c contract.GridCoord) string {
	return fmt.Sprintf("%d.0-%d.0", c.Row, c.Col)
}

package grid

import "tilemeta/pkg/contract"

// shift: 方向偏移（dr 行向，dc 列向）。
type shift struct {
	dr, dc int
}

// 8 方向偏移表。行随 N 增长（X 为北向坐标），列随 E 增长；
// 对角码沿用列字母在前的惯例（WN=西北）。偏移为既定约定，
// 下游文件名交叉引用依赖其自洽，不得按地理直觉调整。
var (
	shiftN  = shift{+1, 0}
	shiftS  = shift{-1, 0}
	shiftE  = shift{0, +1}
	shiftW  = shift{0, -1}
	shiftWN = shift{+1, -1}
	shiftEN = shift{+1, +1}
	shiftWS = shift{-1, -1}
	shiftES = shift{-1, +1}
)

// Resolve 判定一个图幅对 8 个方向的接边结果。
// 基数方向产出 {状态, 邻幅文件名}；对角方向仅产出文件名——
// 对角连通只用于文件名交叉引用，不作为独立接边状态上报。
// 纯函数：不修改参照集，任何输入都有结果（自由边/无）。
func Resolve(c contract.GridCoord, idx *Index) (contract.CardinalLinks, contract.DiagonalNames) {
	links := contract.CardinalLinks{
		N: resolveEdge(c, shiftN, idx),
		S: resolveEdge(c, shiftS, idx),
		E: resolveEdge(c, shiftE, idx),
		W: resolveEdge(c, shiftW, idx),
	}
	diags := contract.DiagonalNames{
		WN: resolveName(c, shiftWN, idx),
		EN: resolveName(c, shiftEN, idx),
		WS: resolveName(c, shiftWS, idx),
		ES: resolveName(c, shiftES, idx),
	}
	return links, diags
}

func resolveEdge(c contract.GridCoord, s shift, idx *Index) contract.EdgeLink {
	t := contract.GridCoord{Row: c.Row + s.dr, Col: c.Col + s.dc}
	if idx.Has(t) {
		return contract.EdgeLink{Status: contract.StatusLinked, Name: CanonicalName(t)}
	}
	return contract.EdgeLink{Status: contract.StatusFreeEdge, Name: contract.NoNeighbor}
}

func resolveName(c contract.GridCoord, s shift, idx *Index) string {
	t := contract.GridCoord{Row: c.Row + s.dr, Col: c.Col + s.dc}
	if idx.Has(t) {
		return CanonicalName(t)
	}
	return contract.NoNeighbor
}

// Derive 完成单图幅的全部纯推导（解析、角点、接边、显示名与输出名）。
// Index 行序与 SizeText 属批次上下文，由编排层补充。
func Derive(id contract.TileID, flightTime string, idx *Index) (contract.TileRecord, error) {
	p, err := ParseIdentifier(id)
	if err != nil {
		return contract.TileRecord{}, err
	}
	links, diags := Resolve(p.Coord, idx)
	return contract.TileRecord{
		ID:         id,
		Coord:      p.Coord,
		RowField:   p.RowField,
		ColField:   p.ColField,
		Band:       p.Band,
		Meridian:   p.Meridian,
		Corners:    DeriveCorners(p.Coord),
		FlightTime: flightTime,
		Links:      links,
		Diagonals:  diags,
		Display:    contract.DisplayName(id),
		OutName:    contract.SanitizeName(string(id)),
	}, nil
}

package grid

import (
	"fmt"

	"tilemeta/pkg/contract"
)

// Index: 接边参照坐标集。一次构建、只读查询；重复坐标自然合并。
type Index struct {
	set map[contract.GridCoord]struct{}
}

// BuildIndex 从参照数据的标识序列构建坐标集。
// 参照行是判定依据，任何一行解析失败都整体拒绝——跳过会静默翻转邻幅存在性。
func BuildIndex(ids []contract.TileID) (*Index, error) {
	set := make(map[contract.GridCoord]struct{}, len(ids))
	for i, id := range ids {
		p, err := ParseIdentifier(id)
		if err != nil {
			return nil, fmt.Errorf("boundary row %d: %w", i, err)
		}
		set[p.Coord] = struct{}{}
	}
	return &Index{set: set}, nil
}

// Has: O(1) 成员判定。
func (x *Index) Has(c contract.GridCoord) bool {
	_, ok := x.set[c]
	return ok
}

// Len: 去重后的坐标数。
func (x *Index) Len() int {
	return len(x.set)
}

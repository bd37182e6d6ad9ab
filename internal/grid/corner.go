package grid

import (
	"strconv"

	"tilemeta/pkg/contract"
)

// 一格 = 1000 线性单位（每轴）。X 由行派生（北向），Y 由列派生（东向，含带号前缀）。
const cellSize = 1000

// DeriveCorners 由网格单元推导四角点坐标。纯函数、全定义域，无错误分支。
// 西南 = (r, c)，西北 = (r+1, c)，东北 = (r+1, c+1)，东南 = (r, c+1)。
func DeriveCorners(c contract.GridCoord) contract.Corners {
	return contract.Corners{
		WS: contract.Corner{X: axis(c.Row), Y: axis(c.Col)},
		WN: contract.Corner{X: axis(c.Row + 1), Y: axis(c.Col)},
		EN: contract.Corner{X: axis(c.Row + 1), Y: axis(c.Col + 1)},
		ES: contract.Corner{X: axis(c.Row), Y: axis(c.Col + 1)},
	}
}

// axis: 整格坐标的两位小数文本。整数乘法后拼接 ".00"，避免浮点格式化误差。
func axis(n int) string {
	return strconv.Itoa(n*cellSize) + ".00"
}

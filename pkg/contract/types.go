package contract

import "fmt"

// TileID: 图幅标识（MapIndex 原样字符串，固定偏移编码行列与带号）。
// 规范形态为 "{行}.0-{列}.0"（如 "3456.0-51437.0"）；读入后不可变。
type TileID string

// GridCoord: 图幅网格坐标（行、列整数对）。
// 作为接边判定键使用；相等性与哈希均为结构性的，可直接作 map 键。
type GridCoord struct {
	Row int
	Col int
}

// Corner: 单个角点坐标，两轴均为两位小数文本（X 由行派生，Y 由列派生）。
type Corner struct {
	X string
	Y string
}

// Corners: 四角点。命名沿用输出字段惯例（列向字母在前）：
// WS=西南、WN=西北、EN=东北、ES=东南。
type Corners struct {
	WS Corner
	WN Corner
	EN Corner
	ES Corner
}

// 接边状态与占位文本。输出模板按原样引用这些字符串。
const (
	// StatusLinked: 偏移坐标存在于参照集。
	StatusLinked = "已接"
	// StatusFreeEdge: 偏移坐标不在参照集。
	StatusFreeEdge = "自由边"
	// NoNeighbor: 邻幅缺失时的文件名占位。
	NoNeighbor = "无"
	// SizeMissing: 数据文件缺失时的大小占位。
	SizeMissing = "数据不存在"
)

// EdgeLink: 基数方向接边结果（状态 + 邻幅文件名）。
type EdgeLink struct {
	Status string
	Name   string
}

// CardinalLinks: 四个基数方向的接边结果。
// 约束：基数方向同时携带状态与文件名；状态取值仅限 StatusLinked/StatusFreeEdge。
type CardinalLinks struct {
	N EdgeLink
	S EdgeLink
	E EdgeLink
	W EdgeLink
}

// DiagonalNames: 四个对角方向的邻幅文件名。
// 约束：对角方向只产出文件名交叉引用（缺失为 NoNeighbor），不携带接边状态；
// 该不对称性是输出契约的一部分，不得补齐。
type DiagonalNames struct {
	WN string
	EN string
	WS string
	ES string
}

// TileRecord: 单图幅派生记录（定型结构，字段齐备后才进入校验）。
// 约束：
// - Index 为输入行序（0 起），装配后在成功子集内严格递增；
// - ID 为读入原文，RowField/ColField 为标识的原始子串（保留前导零）；
// - Band/Meridian 为整数，"°" 后缀由写出端补加。
type TileRecord struct {
	Index      int
	ID         TileID
	Coord      GridCoord
	RowField   string
	ColField   string
	Band       int
	Meridian   int
	Corners    Corners
	SizeText   string
	FlightTime string
	Links      CardinalLinks
	Diagonals  DiagonalNames
	Display    string
	OutName    string
}

// TileError: 单行失败记录。失败行不进入任何派生字段序列。
type TileError struct {
	Index int
	ID    TileID
	Err   error
}

// RecordSet: 批次聚合——输入行数、成功记录（按输入行序）与失败记录（按输入行序）。
// 构建一次，校验通过后交写出端；不跨批持久化。
type RecordSet struct {
	Total   int
	Records []TileRecord
	Errors  []TileError
}

// FieldNames: 列式投影与单元格映射共用的字段键集（规范顺序）。
// 键名沿用数据源/模板侧的既有词汇，不做风格化改写。
var FieldNames = []string{
	"file_name",
	"row_number",
	"column_number",
	"band_number",
	"central_meridian",
	"flight_times",
	"tif_size",
	"WS_X", "WS_Y",
	"WN_X", "WN_Y",
	"EN_X", "EN_Y",
	"ES_X", "ES_Y",
	"filename",
	"Link_N", "filename_N",
	"Link_S", "filename_S",
	"Link_E", "filename_E",
	"Link_W", "filename_W",
	"filename_WN",
	"filename_EN",
	"filename_WS",
	"filename_ES",
}

// Fields: 记录的写出视图（字段键 → 即写文本）。Band/Meridian 在此补 "°"。
func (r *TileRecord) Fields() map[string]string {
	return map[string]string{
		"file_name":        string(r.ID),
		"row_number":       r.RowField,
		"column_number":    r.ColField,
		"band_number":      fmt.Sprintf("%d°", r.Band),
		"central_meridian": fmt.Sprintf("%d°", r.Meridian),
		"flight_times":     r.FlightTime,
		"tif_size":         r.SizeText,
		"WS_X":             r.Corners.WS.X,
		"WS_Y":             r.Corners.WS.Y,
		"WN_X":             r.Corners.WN.X,
		"WN_Y":             r.Corners.WN.Y,
		"EN_X":             r.Corners.EN.X,
		"EN_Y":             r.Corners.EN.Y,
		"ES_X":             r.Corners.ES.X,
		"ES_Y":             r.Corners.ES.Y,
		"filename":         r.Display,
		"Link_N":           r.Links.N.Status,
		"filename_N":       r.Links.N.Name,
		"Link_S":           r.Links.S.Status,
		"filename_S":       r.Links.S.Name,
		"Link_E":           r.Links.E.Status,
		"filename_E":       r.Links.E.Name,
		"Link_W":           r.Links.W.Status,
		"filename_W":       r.Links.W.Name,
		"filename_WN":      r.Diagonals.WN,
		"filename_EN":      r.Diagonals.EN,
		"filename_WS":      r.Diagonals.WS,
		"filename_ES":      r.Diagonals.ES,
	}
}

// Columns: 成功子集的列式投影（字段键 → 按行序的取值序列）。
// 校验器据此核对各序列长度；面向序列的写出端也可直接消费。
func (rs *RecordSet) Columns() map[string][]string {
	cols := make(map[string][]string, len(FieldNames))
	for _, name := range FieldNames {
		cols[name] = make([]string, 0, len(rs.Records))
	}
	for i := range rs.Records {
		f := rs.Records[i].Fields()
		for _, name := range FieldNames {
			cols[name] = append(cols[name], f[name])
		}
	}
	return cols
}

package contract

import "context"

// SizeProber: 数据文件体量探测（文件系统协作方）。
// 约束：
// 1) 文件存在返回格式化大小文本（如 "12.34MB"），缺失返回 SizeMissing；
// 2) 探测结果原样透传进记录，核心不解释其内容；
// 3) 不得因单个文件缺失而报错——缺失本身是合法结果。
type SizeProber interface {
	Probe(ctx context.Context, id TileID) string
}

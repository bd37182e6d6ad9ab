package contract

import "context"

// RecordWriter: 将校验通过的记录集持久化为输出工件（模板副本/GeoJSON 等）。
// 约束：
//  1. 仅在校验通过后调用；实现不得修改记录内容；
//  2. 输出名来自 TileRecord.OutName，越界路径以 ErrPathInvalid 拒绝；
//  3. ctx 取消/超时需尽快返回；
//  4. 错误直接上抛（不做重试/回退），半成品工件由调用方整体作废。
type RecordWriter interface {
	Write(ctx context.Context, rs *RecordSet) error
}

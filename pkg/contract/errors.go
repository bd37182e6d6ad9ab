package contract

import "errors"

// 哨兵错误分类。调用方以 errors.Is 匹配，包装时用 %w 保留链。
var (
	// ErrMalformedIdentifier: 标识长度不足或数字子字段不可解析。
	// 目标行内为单行失败（记录后继续批次）；参照集构建中为致命。
	ErrMalformedIdentifier = errors.New("malformed identifier")
	// ErrInconsistentFieldLength: 派生字段序列长度不一致，或成功+失败不等于输入行数。
	ErrInconsistentFieldLength = errors.New("inconsistent field length")
	// ErrDuplicateIdentifier: 清洗后的输出名重复（输出工件名必须唯一）。
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrMissingBoundaryData: 参照数据不可用（文件缺失/表空/缺必要列）。
	ErrMissingBoundaryData = errors.New("missing boundary data")
	// ErrMissingTargetData: 目标数据不可用（文件缺失/表空/缺必要列）。
	ErrMissingTargetData = errors.New("missing target data")
	// ErrPathInvalid: 输出标识映射为无效/越界路径（例如绝对路径或 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
	// ErrTemplateInvalid: 模板工作簿不可读或无工作表。
	ErrTemplateInvalid = errors.New("template invalid")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵，如行序错乱）。
	ErrInvariantViolation = errors.New("invariant violation")
)

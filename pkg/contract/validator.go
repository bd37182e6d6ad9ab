package contract

import "fmt"

// ValidateRecordSet: 记录集一致性门闩（纯函数，无 I/O）。
// 派生全部完成后、任何输出写出前运行一次；拒绝即整批作废。
// 核查项：
// - 成功 + 失败恰好划分输入行（防止派生静默丢行/复行）；
// - 成功/失败子集内行序与输入一致（Index 严格递增且不越界、不重叠）；
// - 列式投影各字段序列长度等于成功记录数；
// - 清洗后的输出名两两互异（每个输出名即一个输出工件）。
func ValidateRecordSet(rs *RecordSet) error {
	if rs == nil {
		return fmt.Errorf("nil record set: %w", ErrInvariantViolation)
	}
	if got := len(rs.Records) + len(rs.Errors); got != rs.Total {
		return fmt.Errorf("%d records + %d errors != %d input rows: %w",
			len(rs.Records), len(rs.Errors), rs.Total, ErrInconsistentFieldLength)
	}

	seen := make([]bool, rs.Total)
	prev := -1
	for _, r := range rs.Records {
		if r.Index < 0 || r.Index >= rs.Total || seen[r.Index] {
			return fmt.Errorf("record row %d out of range or claimed twice: %w", r.Index, ErrInvariantViolation)
		}
		if r.Index <= prev {
			return fmt.Errorf("record order broken at row %d: %w", r.Index, ErrInvariantViolation)
		}
		seen[r.Index] = true
		prev = r.Index
	}
	prev = -1
	for _, e := range rs.Errors {
		if e.Index < 0 || e.Index >= rs.Total || seen[e.Index] {
			return fmt.Errorf("error row %d out of range or claimed twice: %w", e.Index, ErrInvariantViolation)
		}
		if e.Index <= prev {
			return fmt.Errorf("error order broken at row %d: %w", e.Index, ErrInvariantViolation)
		}
		seen[e.Index] = true
		prev = e.Index
	}

	cols := rs.Columns()
	for _, name := range FieldNames {
		if len(cols[name]) != len(rs.Records) {
			return fmt.Errorf("field %s carries %d values for %d records: %w",
				name, len(cols[name]), len(rs.Records), ErrInconsistentFieldLength)
		}
	}

	names := make(map[string]int, len(rs.Records))
	for _, r := range rs.Records {
		if first, ok := names[r.OutName]; ok {
			return fmt.Errorf("output name %q shared by rows %d and %d: %w",
				r.OutName, first, r.Index, ErrDuplicateIdentifier)
		}
		names[r.OutName] = r.Index
	}
	return nil
}

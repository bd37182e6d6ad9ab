package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"tilemeta/internal/diag"
	"tilemeta/internal/grid"
	"tilemeta/pkg/contract"
)

// - 单点并发：仅此层管理并发；原子组件均为同步、无内部并发。
// - 行序不变量：派生结果按输入行序聚合后才进入校验；并发只改变执行顺序，不改变输出顺序。
// - 失败归因：目标行解析失败记为该行的 TileError，批次继续；参照行解析失败整批拒绝。
// - 门闩：校验不通过不触发任何写出。

// Components 聚合运行所需的原子组件。
type Components struct {
	Boundary contract.TableLoader
	Target   contract.TableLoader
	Prober   contract.SizeProber
	Writer   contract.RecordWriter
	// Exporter 可为 nil（不导出覆盖范围）。
	Exporter contract.RecordWriter
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	BoundaryPath string
	TargetPath   string
	// Workers: 派生阶段并发度；1 为严格串行。
	Workers int
	// DryRun: 校验通过后停止，不写任何输出。
	DryRun bool
}

// 数据源必要列名（沿用数据源侧既有表头词汇）。
const (
	colMapIndex = "MapIndex"
	colTime     = "time"
)

// Run 执行完整批次：装载参照 → 建索引 → 装载目标 → 逐行派生 → 校验 → 写出。
// 返回的 RecordSet 在校验通过时总是非 nil（含 per-tile 错误子集，供调用方上报）。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (*contract.RecordSet, error) {
	if err := sanity(comp, set); err != nil {
		return nil, fmt.Errorf("sanity: %w", err)
	}

	// 参照数据集
	btimer := startTimer(logger, "boundary_loader", "load")
	btable, err := comp.Boundary.Load(ctx, set.BoundaryPath)
	if err != nil {
		failStage(logger, "boundary_loader", "load failed", err)
		return nil, fmt.Errorf("boundary %s: %v: %w", set.BoundaryPath, err, contract.ErrMissingBoundaryData)
	}
	bcol := btable.ColumnIndex(colMapIndex)
	if bcol < 0 || btable.Empty() {
		err := fmt.Errorf("boundary %s: need column %s and at least one row: %w",
			set.BoundaryPath, colMapIndex, contract.ErrMissingBoundaryData)
		failStage(logger, "boundary_loader", "precondition failed", err)
		return nil, err
	}
	finishTimer(btimer, "load", int64(len(btable.Rows)), "boundary_loader")

	// 参照坐标集：任何一行解析失败整体拒绝（跳过会静默翻转邻幅存在性）。
	itimer := startTimer(logger, "boundary_index", "build")
	ids := make([]contract.TileID, len(btable.Rows))
	for i := range btable.Rows {
		ids[i] = contract.TileID(btable.Cell(i, bcol))
	}
	idx, err := grid.BuildIndex(ids)
	if err != nil {
		failStage(logger, "boundary_index", "build failed", err)
		return nil, fmt.Errorf("boundary index: %w", err)
	}
	finishTimer(itimer, "build", int64(idx.Len()), "boundary_index")

	// 目标数据集
	ttimer := startTimer(logger, "target_loader", "load")
	ttable, err := comp.Target.Load(ctx, set.TargetPath)
	if err != nil {
		failStage(logger, "target_loader", "load failed", err)
		return nil, fmt.Errorf("target %s: %v: %w", set.TargetPath, err, contract.ErrMissingTargetData)
	}
	tcol := ttable.ColumnIndex(colMapIndex)
	timeCol := ttable.ColumnIndex(colTime)
	if tcol < 0 || timeCol < 0 || ttable.Empty() {
		err := fmt.Errorf("target %s: need columns %s and %s and at least one row: %w",
			set.TargetPath, colMapIndex, colTime, contract.ErrMissingTargetData)
		failStage(logger, "target_loader", "precondition failed", err)
		return nil, err
	}
	finishTimer(ttimer, "load", int64(len(ttable.Rows)), "target_loader")

	// 逐行派生（纯推导 + 大小探测）。并发仅在此阶段；结果按行下标落位，天然保序。
	rs, err := derive(ctx, comp, set, logger, ttable, tcol, timeCol, idx)
	if err != nil {
		return nil, err
	}

	// 校验门闩
	vtimer := startTimer(logger, "validator", "validate")
	if err := contract.ValidateRecordSet(rs); err != nil {
		failStage(logger, "validator", "validate failed", err)
		return nil, fmt.Errorf("validator: %w", err)
	}
	finishTimer(vtimer, "validate", int64(len(rs.Records)), "validator")

	if set.DryRun {
		return rs, nil
	}

	// 写出（始终串行）
	wtimer := startTimer(logger, "writer", "write")
	if err := comp.Writer.Write(ctx, rs); err != nil {
		failStage(logger, "writer", "write failed", err)
		return nil, fmt.Errorf("writer: %w", err)
	}
	finishTimer(wtimer, "write", int64(len(rs.Records)), "writer")

	if comp.Exporter != nil {
		etimer := startTimer(logger, "exporter", "write")
		if err := comp.Exporter.Write(ctx, rs); err != nil {
			failStage(logger, "exporter", "write failed", err)
			return nil, fmt.Errorf("exporter: %w", err)
		}
		finishTimer(etimer, "write", int64(len(rs.Records)), "exporter")
	}
	return rs, nil
}

// rowResult: 单行派生结果（成功记录或行错误，二选一）。
type rowResult struct {
	rec contract.TileRecord
	err error
	id  contract.TileID
}

// derive 对目标表逐行派生并按输入行序聚合。
// 每行仅依赖自身标识与只读参照集；结果按行下标落位，聚合天然恢复行序。
func derive(ctx context.Context, comp Components, set Settings, logger *diag.Logger,
	table *contract.Table, tcol, timeCol int, idx *grid.Index) (*contract.RecordSet, error) {

	n := len(table.Rows)
	if t := diag.GetTerminal(); t != nil {
		t.StageStart("derive", n)
	}
	stageStart := time.Now()
	stageOK := false
	defer func() {
		if t := diag.GetTerminal(); t != nil {
			t.StageFinish(stageOK, time.Since(stageStart))
		}
	}()

	dtimer := startTimer(logger, "derive", "rows")

	results := make([]rowResult, n)
	var done, errCount atomic.Int64

	work := func(i int) {
		id := contract.TileID(table.Cell(i, tcol))
		rec, err := grid.Derive(id, table.Cell(i, timeCol), idx)
		if err != nil {
			results[i] = rowResult{err: err, id: id}
			errCount.Add(1)
			if logger != nil {
				logger.ErrorWith("derive", string(diag.Classify(err)), err.Error(), nil, string(id), strconv.Itoa(i))
				diag.IncError("derive", string(diag.Classify(err)))
			}
		} else {
			rec.Index = i
			rec.SizeText = comp.Prober.Probe(ctx, id)
			if rec.SizeText == contract.SizeMissing && logger != nil {
				logger.Warn("prober", "data file missing", string(id), strconv.Itoa(i))
			}
			results[i] = rowResult{rec: rec}
		}
		d := done.Add(1)
		if t := diag.GetTerminal(); t != nil {
			t.StageProgress(int(d), n, int(errCount.Load()))
		}
	}

	workers := set.Workers
	if workers < 1 {
		workers = 1
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			work(i)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for i := range jobs {
					work(i)
				}
			}()
		}
	produce:
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				break produce
			case jobs <- i:
			}
		}
		close(jobs)
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	// 聚合：成功与失败各按输入行序；失败行不进入任何字段序列。
	rs := &contract.RecordSet{Total: n}
	for i := range results {
		if results[i].err != nil {
			rs.Errors = append(rs.Errors, contract.TileError{Index: i, ID: results[i].id, Err: results[i].err})
			continue
		}
		rs.Records = append(rs.Records, results[i].rec)
	}
	finishTimer(dtimer, "rows", int64(len(rs.Records)), "derive")
	stageOK = true
	return rs, nil
}

func sanity(c Components, s Settings) error {
	if c.Boundary == nil || c.Target == nil || c.Prober == nil {
		return errors.New("pipeline: missing components")
	}
	if c.Writer == nil && !s.DryRun {
		return errors.New("pipeline: missing writer")
	}
	if s.BoundaryPath == "" || s.TargetPath == "" {
		return errors.New("pipeline: empty dataset path")
	}
	return nil
}

// startTimer / finishTimer / failStage: 日志样板的最小收口。
func startTimer(logger *diag.Logger, comp, msg string) *diag.Timer {
	if logger == nil {
		return nil
	}
	return logger.Start(comp, msg)
}

func finishTimer(t *diag.Timer, msg string, count int64, comp string) {
	if t != nil {
		t.Finish(msg, count)
	}
	diag.IncOp(comp, "finish", "success")
}

func failStage(logger *diag.Logger, comp, msg string, err error) {
	code := diag.Classify(err)
	if logger != nil {
		logger.Error(comp, string(code), msg+": "+err.Error(), nil)
	}
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

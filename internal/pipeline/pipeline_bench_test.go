package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"tilemeta/pkg/contract"
)

// benchTables 构造大批次合成网格：rows×cols 目标集，参照集为其错位子集。
func benchTables(rows, cols int) (*contract.Table, *contract.Table) {
	var bids []string
	var trows [][2]string
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := fmt.Sprintf("%04d.0-51%03d.0", 3000+r, 400+c)
			trows = append(trows, [2]string{id, "2024-05"})
			if (r+c)%2 == 0 {
				bids = append(bids, id)
			}
		}
	}
	return boundaryTable(bids...), targetTable(trows...)
}

// BenchmarkPipeline 测试完整批次（装载→索引→派生→校验）的性能。
func BenchmarkPipeline(b *testing.B) {
	btable, ttable := benchTables(50, 40) // 2000 图幅
	for _, workers := range []int{1, runtime.NumCPU()} {
		b.Run(fmt.Sprintf("W=%d", workers), func(b *testing.B) {
			comp := Components{
				Boundary: &stubLoader{table: btable},
				Target:   &stubLoader{table: ttable},
				Prober:   &stubProber{},
				Writer:   &stubWriter{},
			}
			set := Settings{BoundaryPath: "b", TargetPath: "t", Workers: workers}
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Run(ctx, comp, set, nil); err != nil {
					b.Fatalf("运行失败: %v", err)
				}
			}
		})
	}
}

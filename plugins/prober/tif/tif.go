// Package tif 实现影像数据文件的大小探测。
// 探测 {dir}/{标识}.tif：存在返回格式化兆字节文本，缺失返回哨兵文本。
package tif

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"tilemeta/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// Dir: 数据目录；空则所有图幅记为缺失（探测关闭）。
	Dir string `json:"dir"`
	// Verify: 额外解码 TIFF 头；不可解码的文件按缺失处理
	// （损坏数据不得伪装成有效大小）。
	Verify bool `json:"verify"`
}

// Prober 实现 contract.SizeProber。
type Prober struct {
	dir    string
	verify bool
}

// New 创建 tif 探测器。
func New(opts *Options) *Prober {
	dir := ""
	verify := false
	if opts != nil {
		dir = strings.TrimSpace(opts.Dir)
		verify = opts.Verify
	}
	return &Prober{dir: dir, verify: verify}
}

var _ contract.SizeProber = (*Prober)(nil)

// Probe 返回格式化大小文本或缺失哨兵；单个文件缺失不是错误。
func (p *Prober) Probe(ctx context.Context, id contract.TileID) string {
	select {
	case <-ctx.Done():
		return contract.SizeMissing
	default:
	}
	if p.dir == "" {
		return contract.SizeMissing
	}
	path := filepath.Join(p.dir, string(id)+".tif")
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return contract.SizeMissing
	}
	if p.verify && !decodable(path) {
		return contract.SizeMissing
	}
	return fmt.Sprintf("%.2fMB", float64(st.Size())/1024.0/1024.0)
}

func decodable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = tiff.DecodeConfig(f)
	return err == nil
}

// Package footprint 实现 GeoJSON 覆盖范围导出端：
// 每个图幅一个矩形 Polygon 要素，供 GIS 查看器做质检叠加。
// 纯附加产物，不影响校验与模板输出。
package footprint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"tilemeta/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// Path: 输出文件路径（必需）。
	Path string `json:"path"`
}

// Exporter 实现 contract.RecordWriter。
type Exporter struct {
	path string
}

// New 创建覆盖范围导出端。
func New(opts *Options) (*Exporter, error) {
	if opts == nil || strings.TrimSpace(opts.Path) == "" {
		return nil, os.ErrInvalid
	}
	return &Exporter{path: strings.TrimSpace(opts.Path)}, nil
}

var _ contract.RecordWriter = (*Exporter)(nil)

// Write 以原子替换方式写出单个 FeatureCollection。
func (e *Exporter) Write(ctx context.Context, rs *contract.RecordSet) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fc := geojson.NewFeatureCollection()
	for i := range rs.Records {
		feat, err := feature(&rs.Records[i])
		if err != nil {
			return fmt.Errorf("tile %s: %w", rs.Records[i].ID, err)
		}
		fc.Append(feat)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode footprint: %w", err)
	}

	dir := filepath.Dir(e.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create footprint dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".tmp-footprint-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, e.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// feature 构造单图幅要素：环 西南→西北→东北→东南→西南，点序 (Y, X)。
func feature(r *contract.TileRecord) (*geojson.Feature, error) {
	ring := make(orb.Ring, 0, 5)
	for _, c := range []contract.Corner{r.Corners.WS, r.Corners.WN, r.Corners.EN, r.Corners.ES, r.Corners.WS} {
		pt, err := point(c)
		if err != nil {
			return nil, err
		}
		ring = append(ring, pt)
	}
	feat := geojson.NewFeature(orb.Polygon{ring})
	linked := 0
	free := 0
	for _, l := range []contract.EdgeLink{r.Links.N, r.Links.S, r.Links.E, r.Links.W} {
		if l.Status == contract.StatusLinked {
			linked++
		} else {
			free++
		}
	}
	feat.Properties = geojson.Properties{
		"id":         string(r.ID),
		"band":       r.Band,
		"meridian":   r.Meridian,
		"size":       r.SizeText,
		"linked":     linked,
		"free_edges": free,
	}
	return feat, nil
}

func point(c contract.Corner) (orb.Point, error) {
	x, err := strconv.ParseFloat(c.X, 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("corner X %q: %w", c.X, err)
	}
	y, err := strconv.ParseFloat(c.Y, 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("corner Y %q: %w", c.Y, err)
	}
	return orb.Point{y, x}, nil
}

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"tilemeta/internal/pipeline"
	"tilemeta/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.BoundaryPath) == "" {
		return errors.New("config: boundary_path empty")
	}
	if strings.TrimSpace(cfg.TargetPath) == "" {
		return errors.New("config: target_path empty")
	}
	if cfg.Workers < 1 {
		return errors.New("config: workers must be >= 1")
	}
	if !cfg.DryRun {
		if strings.TrimSpace(cfg.TemplatePath) == "" {
			return errors.New("config: template_path empty (required unless dry_run)")
		}
		if strings.TrimSpace(cfg.OutputDir) == "" {
			return errors.New("config: output_dir empty (required unless dry_run)")
		}
	}
	// 组件名：loader 空名按扩展名选择；其余空名使用默认名。
	if name := loaderName(cfg.Components.BoundaryLoader, cfg.BoundaryPath); registry.TableLoader[name] == nil {
		return fmt.Errorf("config: boundary loader %q not registered", name)
	}
	if name := loaderName(cfg.Components.TargetLoader, cfg.TargetPath); registry.TableLoader[name] == nil {
		return fmt.Errorf("config: target loader %q not registered", name)
	}
	if name := effName(cfg.Components.Prober, Defaults().Components.Prober); registry.SizeProber[name] == nil {
		return fmt.Errorf("config: prober %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, Defaults().Components.Writer); registry.RecordWriter[name] == nil {
		return fmt.Errorf("config: writer %q not registered", name)
	}
	if cfg.FootprintPath != "" {
		if name := effName(cfg.Components.Exporter, Defaults().Components.Exporter); registry.RecordWriter[name] == nil {
			return fmt.Errorf("config: exporter %q not registered", name)
		}
	}
	return nil
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只合成 raw JSON：
// 顶层路径键先落入组件默认选项，再被对应 options 子树覆盖。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	d := Defaults()
	bl, err := registry.TableLoader[loaderName(cfg.Components.BoundaryLoader, cfg.BoundaryPath)](cfg.Options.BoundaryLoader)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	tl, err := registry.TableLoader[loaderName(cfg.Components.TargetLoader, cfg.TargetPath)](cfg.Options.TargetLoader)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	probeOpts, err := overlayOpts(map[string]any{"dir": cfg.DataDir}, cfg.Options.Prober)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	prober, err := registry.SizeProber[effName(cfg.Components.Prober, d.Components.Prober)](probeOpts)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	comp := pipeline.Components{Boundary: bl, Target: tl, Prober: prober}

	if !cfg.DryRun {
		writeOpts, err := overlayOpts(map[string]any{
			"template_path": cfg.TemplatePath,
			"output_dir":    cfg.OutputDir,
		}, cfg.Options.Writer)
		if err != nil {
			return pipeline.Components{}, pipeline.Settings{}, err
		}
		w, err := registry.RecordWriter[effName(cfg.Components.Writer, d.Components.Writer)](writeOpts)
		if err != nil {
			return pipeline.Components{}, pipeline.Settings{}, err
		}
		comp.Writer = w

		if cfg.FootprintPath != "" {
			expOpts, err := overlayOpts(map[string]any{"path": cfg.FootprintPath}, cfg.Options.Exporter)
			if err != nil {
				return pipeline.Components{}, pipeline.Settings{}, err
			}
			e, err := registry.RecordWriter[effName(cfg.Components.Exporter, d.Components.Exporter)](expOpts)
			if err != nil {
				return pipeline.Components{}, pipeline.Settings{}, err
			}
			comp.Exporter = e
		}
	}

	set := pipeline.Settings{
		BoundaryPath: cfg.BoundaryPath,
		TargetPath:   cfg.TargetPath,
		Workers:      cfg.Workers,
		DryRun:       cfg.DryRun,
	}
	return comp, set, nil
}

// overlayOpts: 顶层默认键 + options 子树合成（子树覆盖同名键）。
// 子树中的未知键留给工厂的严格解码拒绝。
func overlayOpts(defaults map[string]any, raw json.RawMessage) (json.RawMessage, error) {
	merged := make(map[string]any, len(defaults)+4)
	for k, v := range defaults {
		merged[k] = v
	}
	if len(raw) > 0 {
		var over map[string]any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&over); err != nil {
			return nil, fmt.Errorf("config: options not an object: %w", err)
		}
		for k, v := range over {
			// 空串不覆盖顶层路径键（模板里键齐备、值可为空）。
			if s, ok := v.(string); ok && s == "" {
				if _, has := defaults[k]; has {
					continue
				}
			}
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// loaderName: 显式名优先；空名按扩展名选择（.csv → csv，否则 xlsx）。
func loaderName(explicit, path string) string {
	if explicit != "" {
		return explicit
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "xlsx"
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}

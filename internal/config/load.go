package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Defaults 返回带有安全默认值的 Config 雏形。
// 注意：boundary_path/target_path 不设默认（必须由 JSON/ENV/CLI 提供）。
func Defaults() Config {
	return Config{
		Workers:   1,
		OutputDir: "out",
		Components: Components{
			BoundaryLoader: "", // 空：按扩展名选择
			TargetLoader:   "",
			Prober:         "tif",
			Writer:         "template",
			Exporter:       "footprint",
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	// 顶层路径
	if strings.TrimSpace(over.BoundaryPath) != "" {
		out.BoundaryPath = strings.TrimSpace(over.BoundaryPath)
	}
	if strings.TrimSpace(over.TargetPath) != "" {
		out.TargetPath = strings.TrimSpace(over.TargetPath)
	}
	if strings.TrimSpace(over.DataDir) != "" {
		out.DataDir = strings.TrimSpace(over.DataDir)
	}
	if strings.TrimSpace(over.TemplatePath) != "" {
		out.TemplatePath = strings.TrimSpace(over.TemplatePath)
	}
	if strings.TrimSpace(over.OutputDir) != "" {
		out.OutputDir = strings.TrimSpace(over.OutputDir)
	}
	if strings.TrimSpace(over.FootprintPath) != "" {
		out.FootprintPath = strings.TrimSpace(over.FootprintPath)
	}
	if over.Workers != 0 {
		out.Workers = over.Workers
	}
	// DryRun 仅支持单向开启（false 是零值，无法与“未覆盖”区分）。
	if over.DryRun {
		out.DryRun = true
	}
	// Logging
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}
	if strings.TrimSpace(over.Logging.Dir) != "" {
		out.Logging.Dir = strings.TrimSpace(over.Logging.Dir)
	}

	// 组件名（空不覆盖）
	if over.Components.BoundaryLoader != "" {
		out.Components.BoundaryLoader = over.Components.BoundaryLoader
	}
	if over.Components.TargetLoader != "" {
		out.Components.TargetLoader = over.Components.TargetLoader
	}
	if over.Components.Prober != "" {
		out.Components.Prober = over.Components.Prober
	}
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}
	if over.Components.Exporter != "" {
		out.Components.Exporter = over.Components.Exporter
	}

	// Options（完整替换对应键）
	if len(over.Options.BoundaryLoader) > 0 {
		out.Options.BoundaryLoader = cloneRaw(over.Options.BoundaryLoader)
	}
	if len(over.Options.TargetLoader) > 0 {
		out.Options.TargetLoader = cloneRaw(over.Options.TargetLoader)
	}
	if len(over.Options.Prober) > 0 {
		out.Options.Prober = cloneRaw(over.Options.Prober)
	}
	if len(over.Options.Writer) > 0 {
		out.Options.Writer = cloneRaw(over.Options.Writer)
	}
	if len(over.Options.Exporter) > 0 {
		out.Options.Exporter = cloneRaw(over.Options.Exporter)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 TILEMETA_；本集合之外的键忽略。
// 支持：BOUNDARY_PATH, TARGET_PATH, DATA_DIR, TEMPLATE_PATH, OUTPUT_DIR,
// FOOTPRINT_PATH, WORKERS, DRY_RUN, LOG_LEVEL, LOG_DIR, COMPONENTS_*,
// OPTIONS_<COMPONENT>_JSON（原样 JSON）。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "TILEMETA_") {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len("TILEMETA_") {
			continue
		}
		key := kv[:eq]
		val := kv[eq+1:]
		nk := strings.TrimPrefix(key, "TILEMETA_")
		switch nk {
		case "BOUNDARY_PATH":
			over.BoundaryPath = strings.TrimSpace(val)
		case "TARGET_PATH":
			over.TargetPath = strings.TrimSpace(val)
		case "DATA_DIR":
			over.DataDir = strings.TrimSpace(val)
		case "TEMPLATE_PATH":
			over.TemplatePath = strings.TrimSpace(val)
		case "OUTPUT_DIR":
			over.OutputDir = strings.TrimSpace(val)
		case "FOOTPRINT_PATH":
			over.FootprintPath = strings.TrimSpace(val)
		case "WORKERS":
			if v, err := atoi(val); err == nil {
				over.Workers = v
			}
		case "DRY_RUN":
			switch strings.ToLower(strings.TrimSpace(val)) {
			case "1", "true", "yes":
				over.DryRun = true
			}
		case "LOG_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "LOG_DIR":
			over.Logging.Dir = strings.TrimSpace(val)
		case "COMPONENTS_BOUNDARY_LOADER":
			over.Components.BoundaryLoader = strings.TrimSpace(val)
		case "COMPONENTS_TARGET_LOADER":
			over.Components.TargetLoader = strings.TrimSpace(val)
		case "COMPONENTS_PROBER":
			over.Components.Prober = strings.TrimSpace(val)
		case "COMPONENTS_WRITER":
			over.Components.Writer = strings.TrimSpace(val)
		case "COMPONENTS_EXPORTER":
			over.Components.Exporter = strings.TrimSpace(val)
		case "OPTIONS_BOUNDARY_LOADER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.BoundaryLoader = json.RawMessage(val)
			}
		case "OPTIONS_TARGET_LOADER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.TargetLoader = json.RawMessage(val)
			}
		case "OPTIONS_PROBER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Prober = json.RawMessage(val)
			}
		case "OPTIONS_WRITER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Writer = json.RawMessage(val)
			}
		case "OPTIONS_EXPORTER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Exporter = json.RawMessage(val)
			}
		default:
			// 其他 TILEMETA_ 键忽略（例如 CONFIG_FILE/CONFIG_JSON 由 CLI 层消费）。
		}
	}
	return over, nil
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func atoi(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

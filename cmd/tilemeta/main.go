package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	cfgpkg "tilemeta/internal/config"
	"tilemeta/internal/diag"
	"tilemeta/internal/pipeline"
	"tilemeta/pkg/contract"
)

var pipelineRun = pipeline.Run

const version = "0.1.0"

// 批处理 CLI：装载参照/目标数据集，派生图幅元数据并写出模板副本。
// 优先级：CLI > ENV(.env) > JSON 配置 > 默认值。
func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()
	corrID := uuid.NewString()
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = godotenv.Load()
	// 先占位默认，稍后在解析/合并配置后重建 logger 以使用最终 level
	logger := diag.NewLogger(corrID, "info", "")
	// flags
	var (
		flagConfig      string
		flagBoundary    string
		flagTarget      string
		flagTemplate    string
		flagOut         string
		flagDataDir     string
		flagFootprint   string
		flagWorkers     int
		flagLogLevel    string
		flagLogDir      string
		flagQuiet       bool
		flagDryRun      bool
		flagInitDir     string
		flagPrintConfig bool
		flagVersion     bool
	)
	flag.StringVar(&flagConfig, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	flag.StringVar(&flagBoundary, "boundary", "", "参照数据集路径（覆盖配置）")
	flag.StringVar(&flagTarget, "target", "", "目标数据集路径（覆盖配置）")
	flag.StringVar(&flagTemplate, "template", "", "模板工作簿路径（覆盖配置）")
	flag.StringVar(&flagOut, "out", "", "输出目录（覆盖配置）")
	flag.StringVar(&flagDataDir, "data-dir", "", "影像数据目录（大小探测；覆盖配置）")
	flag.StringVar(&flagFootprint, "footprint", "", "GeoJSON 覆盖范围输出路径（覆盖配置）")
	flag.IntVar(&flagWorkers, "workers", 0, "派生阶段并发度（覆盖配置）")
	flag.StringVar(&flagLogLevel, "log-level", "", "日志级别 debug|info|warn|error（覆盖配置）")
	flag.StringVar(&flagLogDir, "log-dir", "", "日志目录（覆盖配置）")
	flag.BoolVar(&flagQuiet, "quiet", false, "关闭终端状态提示（stderr）")
	flag.BoolVar(&flagDryRun, "dry-run", false, "校验通过后停止，不写任何输出")
	flag.StringVar(&flagInitDir, "init-config", "", "在指定目录生成默认配置 config.json 和 .env 模板（若已存在则跳过，不覆盖）；不带值时默认当前目录")
	flag.BoolVar(&flagPrintConfig, "print-config", false, "打印合并后的有效配置并退出")
	flag.BoolVar(&flagVersion, "version", false, "打印版本并退出")
	normalizeInitArg()
	flag.Parse()

	if flagVersion {
		fprintf(os.Stdout, "tilemeta %s\n", version)
		return 0
	}

	// --init-config: 生成模板并退出
	if initDir := strings.TrimSpace(flagInitDir); initDir != "" {
		if err := os.MkdirAll(initDir, 0o755); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("cli", string(diag.Classify(err)), "init-config failed", &start)
			return 3
		}
		cfg := cfgpkg.DefaultTemplateConfig()
		if err := writeConfig(filepath.Join(initDir, "config.json"), cfg); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("cli", string(diag.Classify(err)), "init-config failed", &start)
			return 3
		}
		// 生成 .env 模板（不覆盖已存在文件）。
		if err := writeDotEnv(filepath.Join(initDir, ".env")); err != nil {
			fprintf(os.Stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
		}
		return 0
	}

	// JSON 配置（文件或 ENV: TILEMETA_CONFIG_JSON）
	var cfgJSON []byte
	if s := os.Getenv("TILEMETA_CONFIG_JSON"); s != "" {
		cfgJSON = []byte(s)
	}
	if flagConfig == "" {
		if s := os.Getenv("TILEMETA_CONFIG_FILE"); s != "" {
			flagConfig = s
		}
	}
	// 默认读取工作目录下 config.json（若存在）
	if flagConfig == "" {
		if _, err := os.Stat("config.json"); err == nil {
			flagConfig = "config.json"
		}
	}

	cfg := cfgpkg.Defaults()
	if flagConfig != "" || len(cfgJSON) > 0 {
		base, err := cfgpkg.LoadJSON(flagConfig, cfgJSON)
		if err != nil {
			fprintf(os.Stderr, "配置解析失败: %v\n", err)
			logger.Error("cli", string(diag.CodeConfig), "config parse failed", &start)
			return 3
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	// ENV 覆盖（最小集合）
	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fprintf(os.Stderr, "环境变量解析失败: %v\n", err)
		logger.Error("cli", string(diag.CodeConfig), "env overlay failed", &start)
		return 3
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	// CLI 覆盖
	overCLI := cfgpkg.Config{
		BoundaryPath:  flagBoundary,
		TargetPath:    flagTarget,
		TemplatePath:  flagTemplate,
		OutputDir:     flagOut,
		DataDir:       flagDataDir,
		FootprintPath: flagFootprint,
		DryRun:        flagDryRun,
		Logging:       cfgpkg.Logging{Level: flagLogLevel, Dir: flagLogDir},
	}
	if flagWorkers > 0 {
		overCLI.Workers = flagWorkers
	}
	cfg = cfgpkg.Merge(cfg, overCLI)

	if flagPrintConfig {
		_ = dumpConfig(os.Stdout, cfg)
		return 0
	}

	// 基本校验 & 装配
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(os.Stderr, "配置校验失败: %v\n", err)
		// 提示打印有效配置，便于诊断
		_ = dumpConfig(os.Stderr, cfg)
		logger.Error("cli", string(diag.CodeConfig), "validate failed", &start)
		return 3
	}

	// 使用最终配置中的日志级别/目录重建 logger
	logger = diag.NewLogger(corrID, cfg.Logging.Level, cfg.Logging.Dir)

	// 预检：输出目录可写性（dry-run 跳过）
	if err := preflightCheckOutputDir(cfg); err != nil {
		fprintf(os.Stderr, "输出目录不可写或无法创建: %v\n", err)
		logger.Error("cli", string(diag.Classify(err)), "output dir preflight failed", &start)
		return 3
	}

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(os.Stderr, "装配失败: %v\n", err)
		logger.Error("cli", string(diag.CodeConfig), "assemble failed", &start)
		return 3
	}

	// 终端信息提示（非日志）：默认开启，--quiet 关闭
	term := diag.NewTerminal(os.Stderr, !flagQuiet)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	term.RunStart(cfg.Workers, cfg.TargetPath)

	// debug: 输出运行时配置信息
	logger.DebugStart("config", "effective", "", "", map[string]string{
		"boundary":  cfg.BoundaryPath,
		"target":    cfg.TargetPath,
		"data_dir":  cfg.DataDir,
		"template":  cfg.TemplatePath,
		"out":       cfg.OutputDir,
		"footprint": cfg.FootprintPath,
		"workers":   fmt.Sprintf("%d", cfg.Workers),
		"dry_run":   fmt.Sprintf("%t", cfg.DryRun),
	})

	// 运行批次
	t := logger.Start("pipeline", "run")
	rs, err := pipelineRun(context.Background(), comp, set, logger)
	if err != nil {
		code := string(diag.Classify(err))
		logger.Error("pipeline", code, "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != string(diag.CodeUnknown) {
			diag.IncError("pipeline", code)
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		term.RunFinish(false, 0, time.Since(start))
		return 1
	}
	t.Finish("run", int64(len(rs.Records)))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())

	// 逐行失败汇总（不影响退出码：剩余记录已成功写出）
	reportTileErrors(rs.Errors)
	term.RunFinish(true, len(rs.Records), time.Since(start))
	return 0
}

// reportTileErrors 将逐行解析失败打印到 stderr，带行号与标识定位源行。
func reportTileErrors(errs []contract.TileError) {
	if len(errs) == 0 {
		return
	}
	fprintf(os.Stderr, "跳过 %d 行（标识解析失败）：\n", len(errs))
	for _, e := range errs {
		fprintf(os.Stderr, "  行 %d 标识 %q: %v\n", e.Index, string(e.ID), e.Err)
	}
}

func fprintf(w *os.File, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(w *os.File, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	_, _ = w.Write(append([]byte("有效配置:\n"), b...))
	_, _ = w.Write([]byte("\n"))
	return nil
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	_, _ = f.Write([]byte("\n"))
	return nil
}

// normalizeInitArg: 允许 --init-config 在未提供路径值时采用默认值当前目录 "."。
// 兼容以下形式：
//
//	--init-config                => 等价于 --init-config .
//	--init-config=out
//	--init-config out
//
// 仅在检测到“裸开关或后继为下一个开关”的情况下插入默认值。
func normalizeInitArg() {
	args := os.Args
	if len(args) <= 1 {
		return
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0])
	for i := 1; i < len(args); i++ {
		a := args[i]
		out = append(out, a)
		if a == "--init-config" || a == "-init-config" {
			// 若已到末尾，补一个默认值
			if i == len(args)-1 {
				out = append(out, ".")
				continue
			}
			// 若下一个是开关（以 - 开头），则补默认值
			if strings.HasPrefix(args[i+1], "-") {
				out = append(out, ".")
				continue
			}
		}
	}
	os.Args = out
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
// 仅创建文件；不覆盖，不合并。
func writeDotEnv(path string) error {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		// 已存在直接跳过
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}
	var b strings.Builder
	b.WriteString("# tilemeta .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > JSON\n")
	b.WriteString("# 空值表示未设置；按需填写后移除本行注释。\n\n")

	b.WriteString("# 配置来源（可二选一）\n")
	b.WriteString("TILEMETA_CONFIG_FILE=\n")
	b.WriteString("TILEMETA_CONFIG_JSON=\n\n")

	b.WriteString("# 运行参数覆盖\n")
	b.WriteString("TILEMETA_BOUNDARY_PATH=\n")
	b.WriteString("TILEMETA_TARGET_PATH=\n")
	b.WriteString("TILEMETA_DATA_DIR=\n")
	b.WriteString("TILEMETA_TEMPLATE_PATH=\n")
	b.WriteString("TILEMETA_OUTPUT_DIR=\n")
	b.WriteString("TILEMETA_FOOTPRINT_PATH=\n")
	b.WriteString("TILEMETA_WORKERS=\n")
	b.WriteString("TILEMETA_DRY_RUN=\n")
	b.WriteString("TILEMETA_LOG_LEVEL=\n")
	b.WriteString("TILEMETA_LOG_DIR=\n\n")

	b.WriteString("# 组件选择\n")
	b.WriteString("TILEMETA_COMPONENTS_BOUNDARY_LOADER=\n")
	b.WriteString("TILEMETA_COMPONENTS_TARGET_LOADER=\n")
	b.WriteString("TILEMETA_COMPONENTS_PROBER=\n")
	b.WriteString("TILEMETA_COMPONENTS_WRITER=\n")
	b.WriteString("TILEMETA_COMPONENTS_EXPORTER=\n\n")

	b.WriteString("# 组件选项覆盖（原样 JSON）\n")
	b.WriteString("TILEMETA_OPTIONS_BOUNDARY_LOADER_JSON=\n")
	b.WriteString("TILEMETA_OPTIONS_TARGET_LOADER_JSON=\n")
	b.WriteString("TILEMETA_OPTIONS_PROBER_JSON=\n")
	b.WriteString("TILEMETA_OPTIONS_WRITER_JSON=\n")
	b.WriteString("TILEMETA_OPTIONS_EXPORTER_JSON=\n")

	// 写入（不覆盖）
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return err
	}
	return nil
}

// preflightCheckOutputDir: 启动前检查输出目录可写性（dry-run 跳过）。
// 规则：
// - 若目录已存在：尝试创建并删除临时文件；失败则判为不可写。
// - 若目录不存在：检查父目录是否可写（尝试在父目录创建并删除临时目录）。
func preflightCheckOutputDir(cfg cfgpkg.Config) error {
	if cfg.DryRun {
		return nil
	}
	dir := strings.TrimSpace(cfg.OutputDir)
	if dir == "" {
		// 未指定时无法可靠检查，让装配阶段按实现自行报错
		return nil
	}
	if st, err := os.Stat(dir); err == nil && st.IsDir() {
		// 目录存在：尝试写入临时文件
		f, err := os.CreateTemp(dir, ".wcheck-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
		return nil
	} else if err == nil && !st.IsDir() {
		return fmt.Errorf("路径存在但不是目录: %s", dir)
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}
	// 目录不存在：检查父目录可写性
	parent := filepath.Dir(dir)
	if parent == "" || parent == dir {
		return fmt.Errorf("无法确定父目录: %s", dir)
	}
	pst, err := os.Stat(parent)
	if err != nil {
		return err
	}
	if !pst.IsDir() {
		return fmt.Errorf("父路径不是目录: %s", parent)
	}
	tmpd, err := os.MkdirTemp(parent, ".wcheck-*")
	if err != nil {
		return err
	}
	_ = os.RemoveAll(tmpd)
	return nil
}

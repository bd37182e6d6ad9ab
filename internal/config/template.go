package config

import "encoding/json"

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 路径键全部给出占位值，按实际数据目录修改后即可运行；
// - 组件名采用仓库内置实现；loader 留空表示按扩展名选择；
// - 选项给出安全中性默认值（键齐备，值可为空/默认）。
func DefaultTemplateConfig() Config {
	d := Defaults()
	cfg := Config{
		BoundaryPath:  "boundary.xlsx",
		TargetPath:    "target.xlsx",
		DataDir:       "",
		TemplatePath:  "template.xlsx",
		OutputDir:     d.OutputDir,
		FootprintPath: "",
		Workers:       d.Workers,
		Logging:       Logging{Level: "info", Dir: "logs"},
		Components:    d.Components,
	}
	// Options：包含所有键（值可为空/默认），确保键存在。
	cfg.Options.BoundaryLoader = json.RawMessage(`{
  "sheet": ""
}`)
	cfg.Options.TargetLoader = json.RawMessage(`{
  "sheet": ""
}`)
	cfg.Options.Prober = json.RawMessage(`{
  "dir": "",
  "verify": false
}`)
	cfg.Options.Writer = json.RawMessage(`{
  "template_path": "",
  "output_dir": ""
}`)
	cfg.Options.Exporter = json.RawMessage(`{
  "path": ""
}`)
	return cfg
}

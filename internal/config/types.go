package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// BoundaryPath/TargetPath: 参照与目标数据集路径（必需）。
	BoundaryPath string `json:"boundary_path"`
	TargetPath   string `json:"target_path"`
	// DataDir: 影像数据目录（大小探测；空则全部记为缺失）。
	DataDir string `json:"data_dir"`
	// TemplatePath/OutputDir: 模板工作簿与输出目录（template writer 必需）。
	TemplatePath string `json:"template_path"`
	OutputDir    string `json:"output_dir"`
	// FootprintPath: GeoJSON 覆盖范围输出路径（空则不导出）。
	FootprintPath string `json:"footprint_path"`
	// Workers: 派生阶段并发度（>=1；1 为严格串行）。
	Workers int `json:"workers"`
	// DryRun: 校验通过后停止，不写任何输出。
	DryRun  bool    `json:"dry_run"`
	Logging Logging `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 日志等级与日志目录；轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
}

// Components: 组件名选择（注册表中的实现名）。
// loader 名为空时按文件扩展名选择（.csv → csv，否则 xlsx）。
type Components struct {
	BoundaryLoader string `json:"boundary_loader"`
	TargetLoader   string `json:"target_loader"`
	Prober         string `json:"prober"`
	Writer         string `json:"writer"`
	Exporter       string `json:"exporter"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	BoundaryLoader json.RawMessage `json:"boundary_loader"`
	TargetLoader   json.RawMessage `json:"target_loader"`
	Prober         json.RawMessage `json:"prober"`
	Writer         json.RawMessage `json:"writer"`
	Exporter       json.RawMessage `json:"exporter"`
}

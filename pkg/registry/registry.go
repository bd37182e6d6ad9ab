package registry

import (
	"bytes"
	"encoding/json"

	"tilemeta/pkg/contract"
	lcsv "tilemeta/plugins/loader/csvfile"
	lxlsx "tilemeta/plugins/loader/xlsx"
	ptif "tilemeta/plugins/prober/tif"
	wfp "tilemeta/plugins/writer/footprint"
	wtpl "tilemeta/plugins/writer/template"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewTableLoader 工厂签名：接收原样 JSON Options。
type NewTableLoader func(raw json.RawMessage) (contract.TableLoader, error)

// NewSizeProber 工厂签名：接收原样 JSON Options。
type NewSizeProber func(raw json.RawMessage) (contract.SizeProber, error)

// NewRecordWriter 工厂签名：接收原样 JSON Options。
type NewRecordWriter func(raw json.RawMessage) (contract.RecordWriter, error)

// TableLoader 工厂注册表（显式、零反射）。
var TableLoader = map[string]NewTableLoader{
	// xlsx: excelize 工作簿装载
	"xlsx": func(raw json.RawMessage) (contract.TableLoader, error) {
		var opts lxlsx.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return lxlsx.New(&opts), nil
	},
	// csv: 带编码转换的 CSV 装载（utf8/gb18030/gbk）
	"csv": func(raw json.RawMessage) (contract.TableLoader, error) {
		var opts lcsv.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return lcsv.New(&opts)
	},
}

// SizeProber 工厂注册表。
var SizeProber = map[string]NewSizeProber{
	// tif: 文件系统 {dir}/{标识}.tif 探测
	"tif": func(raw json.RawMessage) (contract.SizeProber, error) {
		var opts ptif.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ptif.New(&opts), nil
	},
	// none: 探测关闭（全部记为缺失）。选项键与 tif 同形，值忽略。
	"none": func(raw json.RawMessage) (contract.SizeProber, error) {
		var opts ptif.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ptif.New(nil), nil
	},
}

// RecordWriter 工厂注册表。
var RecordWriter = map[string]NewRecordWriter{
	// template: 每图幅复制模板 xlsx 并填固定单元格
	"template": func(raw json.RawMessage) (contract.RecordWriter, error) {
		var opts wtpl.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wtpl.New(&opts)
	},
	// footprint: GeoJSON 覆盖范围导出
	"footprint": func(raw json.RawMessage) (contract.RecordWriter, error) {
		var opts wfp.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfp.New(&opts)
	},
}

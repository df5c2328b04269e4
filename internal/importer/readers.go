package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// 支付宝 CSV 必需列
var alipayColumns = []string{"创建时间", "商品名称", "订单金额(元)", "对方名称", "分类"}

// 微信 XLSX 必需列
var wechatColumns = []string{"交易时间", "交易对方", "商品", "收/支", "金额(元)"}

// ReadAlipayCSV 读取支付宝导出的 CSV 账单，返回统一的原始行。
// 第一行必须是表头，缺列直接报错（格式不对没法继续）。
func ReadAlipayCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 行尾列数不齐时不报错，逐行处理

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("读取 CSV 失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV 文件为空")
	}

	header := records[0]
	// 去掉可能的 UTF-8 BOM
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	idx, err := columnIndex(header, alipayColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		cell := func(name string) string {
			i := idx[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		rows = append(rows, RawRow{
			Time:        cell("创建时间"),
			Counterpart: cell("对方名称"),
			Product:     cell("商品名称"),
			Amount:      cell("订单金额(元)"),
			Category:    cell("分类"),
			Raw: map[string]string{
				"创建时间":    cell("创建时间"),
				"商品名称":    cell("商品名称"),
				"订单金额(元)": cell("订单金额(元)"),
				"对方名称":    cell("对方名称"),
				"分类":      cell("分类"),
			},
		})
	}
	return rows, nil
}

// ReadWechatXLSX 读取微信导出的 XLSX 账单（第一个工作表），返回统一的原始行
func ReadWechatXLSX(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("打开 XLSX 失败: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX 文件没有工作表")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("XLSX 文件为空")
	}

	idx, err := columnIndex(records[0], wechatColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		cell := func(name string) string {
			i := idx[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		raw := map[string]string{
			"交易时间":  cell("交易时间"),
			"交易对方":  cell("交易对方"),
			"商品":    cell("商品"),
			"收/支":   cell("收/支"),
			"金额(元)": cell("金额(元)"),
		}
		// 微信账单可能带可选的分类列
		category := ""
		if i, ok := idx["分类"]; ok && i < len(rec) {
			category = strings.TrimSpace(rec[i])
			raw["分类"] = category
		}
		rows = append(rows, RawRow{
			Time:        cell("交易时间"),
			Counterpart: cell("交易对方"),
			Product:     cell("商品"),
			Direction:   cell("收/支"),
			Amount:      cell("金额(元)"),
			Category:    category,
			Raw:         raw,
		})
	}
	return rows, nil
}

// columnIndex 在表头里定位必需列，缺列报错；顺带记录可选列的位置
func columnIndex(header []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("文件缺少必要的列: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

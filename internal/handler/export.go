package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/zjzjzjzj1874/jinzhangben/internal/models"
	"github.com/zjzjzjzj1874/jinzhangben/internal/store"
	"github.com/zjzjzjzj1874/jinzhangben/internal/util"
)

// ExportHandler 负责账单导出
type ExportHandler struct {
	Store *store.BillStore
}

func NewExportHandler(s *store.BillStore) *ExportHandler {
	return &ExportHandler{Store: s}
}

// queryBills 按可选的 year 参数取导出数据，不传则导出全量
func (h *ExportHandler) queryBills(c *gin.Context) ([]models.Bill, bool) {
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1970 || year > 9999 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "年份不合法")
			return nil, false
		}
		bills, err := h.Store.QueryByDateRange(year*10000+101, year*10000+1231, store.Filter{})
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
			return nil, false
		}
		return bills, true
	}

	bills, err := h.Store.All()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return nil, false
	}
	return bills, true
}

// exportRow 一行导出数据：类型、类别、金额（正数幅度）、备注、日期
func exportRow(b *models.Bill) []string {
	typeText := "支出"
	if b.Type == models.DirectionIncome {
		typeText = "收入"
	}
	return []string{
		typeText,
		b.Category,
		b.Amount.Abs().String(),
		b.Remark,
		models.FormatDate(b.BillDate),
	}
}

// ExportCSV 导出账单为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	bills, ok := h.queryBills(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"bills_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM（让 Excel 正确识别中文）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"类型", "类别", "金额(元)", "备注", "日期"})
	for i := range bills {
		writer.Write(exportRow(&bills[i]))
	}
}

// ExportXLSX 导出账单为 XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	bills, ok := h.queryBills(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "账单明细"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "创建工作表失败")
		return
	}
	f.SetActiveSheet(index)

	headers := []string{"类型", "类别", "金额(元)", "备注", "日期"}
	for i, hd := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, hd)
	}

	for idx := range bills {
		row := idx + 2
		cols := exportRow(&bills[idx])
		for i, v := range cols {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+i, row), v)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 30)
	f.SetColWidth(sheetName, "E", "E", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"bills_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "导出失败")
	}
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zjzjzjzj1874/jinzhangben/internal/classifier"
	"github.com/zjzjzjzj1874/jinzhangben/internal/importer"
	"github.com/zjzjzjzj1874/jinzhangben/internal/store"
	"github.com/zjzjzjzj1874/jinzhangben/internal/util"
)

// 上传文件大小上限 10MB
const maxImportSize = 10 << 20

// ImportHandler 负责支付宝 / 微信账单的上传导入
type ImportHandler struct {
	Store *store.BillStore
	Rules *classifier.RuleSet
	Log   zerolog.Logger
}

func NewImportHandler(s *store.BillStore, rs *classifier.RuleSet, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{Store: s, Rules: rs, Log: log}
}

// ImportAlipay 导入支付宝 CSV 账单：POST /api/import/alipay，表单字段 file
func (h *ImportHandler) ImportAlipay(c *gin.Context) {
	h.doImport(c, importer.SourceAlipay)
}

// ImportWechat 导入微信 XLSX 账单：POST /api/import/wechat，表单字段 file
func (h *ImportHandler) ImportWechat(c *gin.Context) {
	h.doImport(c, importer.SourceWechat)
}

// doImport 读取上传文件，归一化后把已分类的账单入库。
// 未分类的行原样返回给调用方人工补录，不算失败；
// 解析失败的行带行号和原因返回，同一批里的好行照常导入。
func (h *ImportHandler) doImport(c *gin.Context, source importer.Source) {
	fh, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请上传账单文件")
		return
	}
	if fh.Size > maxImportSize {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "文件过大，最多 10MB")
		return
	}

	f, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "读取上传文件失败")
		return
	}
	defer f.Close()

	var rows []importer.RawRow
	switch source {
	case importer.SourceAlipay:
		rows, err = importer.ReadAlipayCSV(f)
	case importer.SourceWechat:
		rows, err = importer.ReadWechatXLSX(f)
	}
	if err != nil {
		h.Log.Warn().Err(err).Str("file", fh.Filename).Msg("账单文件解析失败")
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "账单文件格式不正确: "+err.Error())
		return
	}

	result, err := importer.Normalize(rows, source, h.Rules)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	imported, insertErrs := h.Store.InsertBatch(result.Classified)

	h.Log.Info().
		Str("batch_id", result.BatchID).
		Str("source", string(source)).
		Int("rows", len(rows)).
		Int("imported", imported).
		Int("unclassified", len(result.Unclassified)).
		Int("row_errors", len(result.Errors)).
		Msg("账单导入完成")

	insertFailed := make([]string, 0, len(insertErrs))
	for _, e := range insertErrs {
		insertFailed = append(insertFailed, e.Error())
	}

	util.Success(c, util.Response{
		"batch_id":      result.BatchID,
		"source":        result.Source,
		"total_rows":    len(rows),
		"imported":      imported,
		"unclassified":  result.Unclassified,
		"row_errors":    result.Errors,
		"insert_failed": insertFailed,
	})
}

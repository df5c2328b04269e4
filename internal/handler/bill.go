package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/zjzjzjzj1874/jinzhangben/internal/classifier"
	"github.com/zjzjzjzj1874/jinzhangben/internal/models"
	"github.com/zjzjzjzj1874/jinzhangben/internal/period"
	"github.com/zjzjzjzj1874/jinzhangben/internal/stats"
	"github.com/zjzjzjzj1874/jinzhangben/internal/store"
	"github.com/zjzjzjzj1874/jinzhangben/internal/util"
)

// BillHandler 负责账单的录入、查询和统计接口
type BillHandler struct {
	Store    *store.BillStore
	Rules    *classifier.RuleSet
	PageSize int
	Log      zerolog.Logger
}

func NewBillHandler(s *store.BillStore, rs *classifier.RuleSet, pageSize int, log zerolog.Logger) *BillHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &BillHandler{Store: s, Rules: rs, PageSize: pageSize, Log: log}
}

// ---------- 请求/响应结构 ----------

type createBillReq struct {
	Type     string `json:"type" binding:"required,oneof=income expense"`
	Category string `json:"category" binding:"max=32"`
	Amount   string `json:"amount" binding:"required"` // 正数幅度，符号由 type 决定
	Remark   string `json:"remark" binding:"max=255"`
	BillDate string `json:"bill_date"` // YYYY-MM-DD，缺省为今天
}

type billResp struct {
	ID       uint   `json:"id"`
	BillDate string `json:"bill_date"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Remark   string `json:"remark"`
}

func toBillResp(b *models.Bill) billResp {
	return billResp{
		ID:       b.ID,
		BillDate: models.FormatDate(b.BillDate),
		Type:     string(b.Type),
		Category: b.Category,
		Amount:   b.Amount.String(),
		Remark:   b.Remark,
	}
}

// ---------- 记一笔 ----------

// CreateBill 手工录入一条账单。金额按正数幅度提交，
// 支出在这里统一转成负数入库。类别留空时先走规则分类，
// 分不出来就落成未分类等人工处理。
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req createBillReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	magnitude, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入有效金额")
		return
	}
	f, _ := magnitude.Float64()
	if err := util.ValidateAmount(f); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入有效金额")
		return
	}

	// 交易日期：默认为今天，不能晚于今天
	billDay := time.Now()
	if req.BillDate != "" {
		if err := util.ValidateDate(req.BillDate); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式错误，应为 YYYY-MM-DD")
			return
		}
		billDay, _ = time.ParseInLocation("2006-01-02", req.BillDate, time.Local)
	}
	if models.DateInt(billDay) > models.DateInt(time.Now()) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "交易日期不能晚于今天")
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		if got, ok := h.Rules.Classify(req.Remark, "", ""); ok {
			category = got
		} else {
			category = models.CategoryUnclassified
		}
	}
	if err := util.ValidateCategory(category); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "未知的账单类别")
		return
	}

	direction := models.Direction(req.Type)
	amount := magnitude.Abs()
	if direction == models.DirectionExpense {
		amount = amount.Neg()
	}

	bill := models.Bill{
		BillDate: models.DateInt(billDay),
		Type:     direction,
		Category: category,
		Amount:   amount,
		Remark:   req.Remark,
	}

	if err := h.Store.Insert(&bill); err != nil {
		h.Log.Error().Err(err).Msg("录入账单失败")
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	util.Success(c, util.Response{
		"bill": toBillResp(&bill),
	})
}

// ---------- 多条件查询 ----------

// ListBills 查询账单列表，支持时间范围、类型、类别、金额区间、备注关键词，
// 返回分页数据和同条件下的收支汇总
func (h *BillHandler) ListBills(c *gin.Context) {
	w, ok := h.parseRange(c)
	if !ok {
		return
	}

	f := store.Filter{
		Category: c.Query("category"),
		Remark:   c.Query("remark"),
	}
	if t := c.Query("type"); t == "income" || t == "expense" {
		f.Type = models.Direction(t)
	}
	if v := c.Query("min_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.Sign() < 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "最小金额格式错误")
			return
		}
		f.MinAmount = &d
	}
	if v := c.Query("max_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.Sign() < 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "最大金额格式错误")
			return
		}
		f.MaxAmount = &d
	}

	bills, err := h.Store.QueryByDateRange(w.StartDate(), w.EndDate(), f)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	page, size := h.parsePage(c)
	offset := (page - 1) * size
	items := make([]billResp, 0, size)
	for i := offset; i < len(bills) && i < offset+size; i++ {
		items = append(items, toBillResp(&bills[i]))
	}

	// 同条件下的汇总（全量，不只当前页）
	summary := stats.Summarize(bills, w)
	byCategory := stats.CategorySummary(bills, w, f.Type)

	util.Success(c, util.Response{
		"items":       items,
		"total":       len(bills),
		"page":        page,
		"size":        size,
		"summary":     summary,
		"by_category": byCategory,
	})
}

// ---------- 周期汇总 ----------

// GetPeriodSummary 按自然周期汇总：?granularity=week|month|quarter|year&date=2025-01-15
func (h *BillHandler) GetPeriodSummary(c *gin.Context) {
	ref := time.Now()
	if v := c.Query("date"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式错误，应为 YYYY-MM-DD")
			return
		}
		ref = t
	}

	g := period.Granularity(c.DefaultQuery("granularity", "month"))
	w, err := period.Resolve(ref, g)
	if err != nil {
		if errors.Is(err, period.ErrInvalidGranularity) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "不支持的统计周期")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "周期计算失败")
		return
	}

	bills, err := h.Store.QueryByDateRange(w.StartDate(), w.EndDate(), store.Filter{})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	util.Success(c, util.Response{
		"granularity":         string(g),
		"summary":             stats.Summarize(bills, w),
		"income_by_category":  stats.CategorySummary(bills, w, models.DirectionIncome),
		"expense_by_category": stats.CategorySummary(bills, w, models.DirectionExpense),
	})
}

// GetMonthlyStats 某一年按月的收支序列：?year=2025
func (h *BillHandler) GetMonthlyStats(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}

	bills, err := h.Store.QueryByDateRange(year*10000+101, year*10000+1231, store.Filter{})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	util.Success(c, util.Response{
		"year":    year,
		"monthly": stats.MonthlySummary(bills, year),
	})
}

// GetCategoryStats 某一年按类别的汇总：?year=2025&direction=income|expense
func (h *BillHandler) GetCategoryStats(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}

	var direction models.Direction
	if v := c.Query("direction"); v != "" {
		direction = models.Direction(v)
		if !direction.Valid() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "direction 只能是 income 或 expense")
			return
		}
	}

	w, err := period.FromRange(year*10000+101, year*10000+1231)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "年份不合法")
		return
	}

	bills, err := h.Store.QueryByDateRange(w.StartDate(), w.EndDate(), store.Filter{})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	util.Success(c, util.Response{
		"year":        year,
		"by_category": stats.CategorySummary(bills, w, direction),
	})
}

// ---------- 年度明细分页 ----------

// ListByYear 年度总览的分页明细：?year=2025&page=1&page_size=20
func (h *BillHandler) ListByYear(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}
	page, size := h.parsePage(c)

	bills, total, err := h.Store.PageByYear(year, page, size)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	items := make([]billResp, 0, len(bills))
	for i := range bills {
		items = append(items, toBillResp(&bills[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// ---------- 参数解析 ----------

// parseRange 解析 start / end 查询参数（YYYY-MM-DD），
// 都缺省时默认最近 30 天（含今天）
func (h *BillHandler) parseRange(c *gin.Context) (period.Window, bool) {
	startStr := c.Query("start")
	endStr := c.Query("end")

	now := time.Now()
	start := now.AddDate(0, 0, -29)
	end := now

	if startStr != "" {
		t, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "开始日期格式错误，应为 YYYY-MM-DD")
			return period.Window{}, false
		}
		start = t
	}
	if endStr != "" {
		t, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "结束日期格式错误，应为 YYYY-MM-DD")
			return period.Window{}, false
		}
		end = t
	}

	w, err := period.FromRange(models.DateInt(start), models.DateInt(end))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "开始日期不能晚于结束日期")
		return period.Window{}, false
	}
	return w, true
}

func (h *BillHandler) parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	return page, size
}

func (h *BillHandler) parseYear(c *gin.Context) (int, bool) {
	yearStr := c.DefaultQuery("year", strconv.Itoa(time.Now().Year()))
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1970 || year > 9999 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "年份不合法")
		return 0, false
	}
	return year, true
}

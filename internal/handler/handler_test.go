package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zjzjzjzj1874/jinzhangben/internal/classifier"
	"github.com/zjzjzjzj1874/jinzhangben/internal/models"
	"github.com/zjzjzjzj1874/jinzhangben/internal/store"
)

// ============ 测试装配 ============

func newTestEnv(t *testing.T) (*gin.Engine, *store.BillStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.Bill{}, &models.Backup{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	s := store.New(db, zerolog.Nop())
	bh := NewBillHandler(s, classifier.Default(), 20, zerolog.Nop())
	ih := NewImportHandler(s, classifier.Default(), zerolog.Nop())
	kh := NewBackupHandler(db, s, t.TempDir(), "test-backup-key", zerolog.Nop())

	r := gin.New()
	api := r.Group("/api")
	api.POST("/bills", bh.CreateBill)
	api.GET("/bills", bh.ListBills)
	api.GET("/bills/year", bh.ListByYear)
	api.GET("/stats/period", bh.GetPeriodSummary)
	api.GET("/stats/monthly", bh.GetMonthlyStats)
	api.GET("/stats/category", bh.GetCategoryStats)
	api.POST("/import/alipay", ih.ImportAlipay)
	api.POST("/backups", kh.CreateBackup)
	api.POST("/backups/:id/restore", kh.RestoreBackup)

	return r, s
}

type apiResp struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResp) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("编码请求体失败: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	return w, resp
}

func seedBill(t *testing.T, s *store.BillStore, date int, typ models.Direction, category, amount, remark string) {
	t.Helper()
	b := models.Bill{
		BillDate: date,
		Type:     typ,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Remark:   remark,
	}
	if err := s.Insert(&b); err != nil {
		t.Fatalf("预置账单失败: %v", err)
	}
}

func dataDecimal(t *testing.T, m map[string]interface{}, key string) decimal.Decimal {
	t.Helper()
	v, ok := m[key].(string)
	if !ok {
		t.Fatalf("字段 %s 不是字符串: %#v", key, m[key])
	}
	return decimal.RequireFromString(v)
}

// ============ 记一笔 ============

func TestCreateBill_ExpenseSign(t *testing.T) {
	r, s := newTestEnv(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/bills", gin.H{
		"type":      "expense",
		"category":  "餐饮",
		"amount":    "35.50",
		"remark":    "午饭",
		"bill_date": "2025-01-05",
	})
	if w.Code != http.StatusOK || resp.Code != 0 {
		t.Fatalf("录入失败: status=%d body=%v", w.Code, resp)
	}

	bills, err := s.QueryByDateRange(20250105, 20250105, store.Filter{})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("期望 1 条账单, 实际 %d", len(bills))
	}
	if !bills[0].Amount.Equal(decimal.RequireFromString("-35.50")) {
		t.Errorf("支出应存负数, 实际 %s", bills[0].Amount)
	}
}

func TestCreateBill_ClassifyWhenCategoryEmpty(t *testing.T) {
	r, s := newTestEnv(t)

	_, resp := doJSON(t, r, http.MethodPost, "/api/bills", gin.H{
		"type":      "expense",
		"amount":    "18",
		"remark":    "打车去公司",
		"bill_date": "2025-02-01",
	})
	if resp.Code != 0 {
		t.Fatalf("录入失败: %v", resp)
	}

	bills, _ := s.QueryByDateRange(20250201, 20250201, store.Filter{})
	if len(bills) != 1 || bills[0].Category != "交通" {
		t.Errorf("备注含打车应分类为交通, 实际 %v", bills)
	}
}

func TestCreateBill_InvalidType(t *testing.T) {
	r, _ := newTestEnv(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/bills", gin.H{
		"type":   "transfer",
		"amount": "10",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法类型应返回 400, 实际 %d", w.Code)
	}
}

func TestCreateBill_FutureDateRejected(t *testing.T) {
	r, _ := newTestEnv(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/bills", gin.H{
		"type":      "expense",
		"category":  "餐饮",
		"amount":    "10",
		"bill_date": "2099-01-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("未来日期应返回 400, 实际 %d", w.Code)
	}
}

// ============ 列表查询 ============

func TestListBills_RangeAndSummary(t *testing.T) {
	r, s := newTestEnv(t)

	seedBill(t, s, 20250105, models.DirectionIncome, "兼职收入", "5000", "一月兼职")
	seedBill(t, s, 20250110, models.DirectionExpense, "餐饮", "-35.50", "午饭")
	seedBill(t, s, 20250215, models.DirectionExpense, "服饰", "-120", "外套")

	_, resp := doJSON(t, r, http.MethodGet, "/api/bills?start=2025-01-01&end=2025-01-31", nil)
	if resp.Code != 0 {
		t.Fatalf("查询失败: %v", resp)
	}

	if total := resp.Data["total"].(float64); total != 2 {
		t.Errorf("一月应有 2 条账单, 实际 %v", total)
	}

	summary := resp.Data["summary"].(map[string]interface{})
	if got := dataDecimal(t, summary, "income"); !got.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("收入汇总错误: %s", got)
	}
	if got := dataDecimal(t, summary, "expense"); !got.Equal(decimal.RequireFromString("35.50")) {
		t.Errorf("支出汇总错误: %s", got)
	}
	if got := dataDecimal(t, summary, "net"); !got.Equal(decimal.RequireFromString("4964.50")) {
		t.Errorf("结余错误: %s", got)
	}
}

func TestListBills_AmountFilterOnExpense(t *testing.T) {
	r, s := newTestEnv(t)

	seedBill(t, s, 20250105, models.DirectionExpense, "餐饮", "-35.50", "午饭")
	seedBill(t, s, 20250106, models.DirectionExpense, "服饰", "-120", "外套")
	seedBill(t, s, 20250107, models.DirectionExpense, "日用品", "-58", "纸巾")

	// 幅度区间 [50, 200]：应命中 -120 和 -58
	_, resp := doJSON(t, r, http.MethodGet,
		"/api/bills?start=2025-01-01&end=2025-01-31&type=expense&min_amount=50&max_amount=200", nil)
	if resp.Code != 0 {
		t.Fatalf("查询失败: %v", resp)
	}
	if total := resp.Data["total"].(float64); total != 2 {
		t.Errorf("幅度过滤应命中 2 条, 实际 %v", total)
	}
}

func TestListBills_BadDateParam(t *testing.T) {
	r, _ := newTestEnv(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/bills?start=2025/01/01", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法日期应返回 400, 实际 %d", w.Code)
	}
}

// ============ 周期汇总 ============

func TestGetPeriodSummary_Month(t *testing.T) {
	r, s := newTestEnv(t)

	seedBill(t, s, 20250105, models.DirectionIncome, "兼职收入", "5000", "")
	seedBill(t, s, 20250110, models.DirectionExpense, "餐饮", "-35.50", "")
	seedBill(t, s, 20250215, models.DirectionExpense, "服饰", "-120", "")

	_, resp := doJSON(t, r, http.MethodGet, "/api/stats/period?granularity=month&date=2025-01-15", nil)
	if resp.Code != 0 {
		t.Fatalf("查询失败: %v", resp)
	}

	summary := resp.Data["summary"].(map[string]interface{})
	if got := dataDecimal(t, summary, "net"); !got.Equal(decimal.RequireFromString("4964.50")) {
		t.Errorf("一月结余错误: %s", got)
	}
	if start := summary["start_date"].(float64); start != 20250101 {
		t.Errorf("窗口起点错误: %v", start)
	}
	if end := summary["end_date"].(float64); end != 20250131 {
		t.Errorf("窗口终点错误: %v", end)
	}
}

func TestGetPeriodSummary_InvalidGranularity(t *testing.T) {
	r, _ := newTestEnv(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/stats/period?granularity=decade&date=2025-01-15", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法周期应返回 400, 实际 %d", w.Code)
	}
}

// ============ 年度分页 ============

func TestListByYear_Pagination(t *testing.T) {
	r, s := newTestEnv(t)

	for day := 1; day <= 5; day++ {
		seedBill(t, s, 20250300+day, models.DirectionExpense, "餐饮", "-10", "")
	}

	_, resp := doJSON(t, r, http.MethodGet, "/api/bills/year?year=2025&page=2&page_size=2", nil)
	if resp.Code != 0 {
		t.Fatalf("查询失败: %v", resp)
	}
	if total := resp.Data["total"].(float64); total != 5 {
		t.Errorf("年度总数错误: %v", total)
	}
	items := resp.Data["items"].([]interface{})
	if len(items) != 2 {
		t.Errorf("第二页应有 2 条, 实际 %d", len(items))
	}
}

// ============ 备份 ============

func TestBackup_EncryptedRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.Bill{}, &models.Backup{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	s := store.New(db, zerolog.Nop())
	backupDir := t.TempDir()
	kh := NewBackupHandler(db, s, backupDir, "test-backup-key", zerolog.Nop())

	r := gin.New()
	api := r.Group("/api")
	api.POST("/backups", kh.CreateBackup)
	api.POST("/backups/:id/restore", kh.RestoreBackup)

	seedBill(t, s, 20250105, models.DirectionIncome, "兼职收入", "5000", "一月兼职")
	seedBill(t, s, 20250110, models.DirectionExpense, "餐饮", "-35.50", "午饭")

	// 生成备份
	_, resp := doJSON(t, r, http.MethodPost, "/api/backups", nil)
	if resp.Code != 0 {
		t.Fatalf("创建备份失败: %v", resp)
	}
	info := resp.Data["backup"].(map[string]interface{})
	fileName := info["file_name"].(string)
	backupID := int(info["id"].(float64))

	// 备份文件必须是密文，不能出现明文字段
	raw, err := os.ReadFile(filepath.Join(backupDir, fileName))
	if err != nil {
		t.Fatalf("读取备份文件失败: %v", err)
	}
	if bytes.Contains(raw, []byte("bills")) || bytes.Contains(raw, []byte("兼职")) {
		t.Error("备份文件不应包含明文内容")
	}

	// 备份后新增一条，再恢复，应回到备份时的两条
	seedBill(t, s, 20250201, models.DirectionExpense, "服饰", "-120", "外套")

	_, resp = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/backups/%d/restore", backupID), nil)
	if resp.Code != 0 {
		t.Fatalf("恢复备份失败: %v", resp)
	}
	if count := resp.Data["bills_count"].(float64); count != 2 {
		t.Errorf("恢复数量错误: %v", count)
	}

	bills, err := s.All()
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(bills) != 2 {
		t.Errorf("恢复后应只有备份时的 2 条账单, 实际 %d", len(bills))
	}
}

// ============ 导入 ============

func TestImportAlipay_EndToEnd(t *testing.T) {
	r, s := newTestEnv(t)

	csvBody := strings.Join([]string{
		"创建时间,商品名称,订单金额(元),对方名称,分类",
		"2025-01-05 12:30:00,外卖订单午餐,35.50,某商家,",
		"2025-01-06 08:00:00,地铁出行,4.00,成都地铁运营有限公司,",
		"2025-01-07 09:00:00,神秘消费,9.99,路边摊,",
		"坏日期,东西,1.00,某店,",
	}, "\n")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "alipay.csv")
	if err != nil {
		t.Fatalf("构造上传文件失败: %v", err)
	}
	fw.Write([]byte(csvBody))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import/alipay", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	if w.Code != http.StatusOK || resp.Code != 0 {
		t.Fatalf("导入失败: status=%d body=%v", w.Code, resp)
	}

	// 两条可分类的入库，一条未分类返回，一条坏行报错
	if imported := resp.Data["imported"].(float64); imported != 2 {
		t.Errorf("应导入 2 条, 实际 %v", imported)
	}
	if un := resp.Data["unclassified"].([]interface{}); len(un) != 1 {
		t.Errorf("应有 1 条未分类, 实际 %d", len(un))
	}
	if errs := resp.Data["row_errors"].([]interface{}); len(errs) != 1 {
		t.Errorf("应有 1 条行错误, 实际 %d", len(errs))
	}

	bills, _ := s.QueryByDateRange(20250101, 20250131, store.Filter{})
	if len(bills) != 2 {
		t.Errorf("库中应有 2 条账单, 实际 %d", len(bills))
	}
	for _, b := range bills {
		if b.Amount.Sign() >= 0 {
			t.Errorf("支付宝导入应全部为支出负数, 实际 %s", b.Amount)
		}
	}
}

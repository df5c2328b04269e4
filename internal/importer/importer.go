package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zjzjzjzj1874/jinzhangben/internal/classifier"
	"github.com/zjzjzjzj1874/jinzhangben/internal/models"
)

// Source 账单来源
type Source string

const (
	SourceAlipay Source = "alipay"
	SourceWechat Source = "wechat"
)

// 行级错误类型。单行失败只跳过该行，整批继续。
var (
	ErrBadDate          = errors.New("无法解析日期")
	ErrBadAmount        = errors.New("无法解析金额")
	ErrUnknownDirection = errors.New("未知的收支类型")
	ErrUnknownSource    = errors.New("未知的账单来源")
)

// RawRow 一条原始导入行，字段已按来源映射到统一列
type RawRow struct {
	Time        string // 交易时间（支付宝为创建时间）
	Counterpart string // 交易对方
	Product     string // 商品名称/描述
	Direction   string // 收/支 标志；支付宝账单没有此列
	Amount      string // 原始金额文本，可能带货币符号和千分位
	Category    string // 数据源自带的分类，可为空

	Raw map[string]string // 原始列，仅供人工核对，不入库
}

// RowError 记录某一行的失败原因
type RowError struct {
	Index int    `json:"index"` // 行号，从 0 开始
	Err   error  `json:"-"`
	Msg   string `json:"message"`
}

// Result 一次批量归一化的结果。
// 已分类和未分类两个桶里的账单都已经符号正确，未分类的只是还没有类别，
// 需要人工补录，不算失败。
type Result struct {
	BatchID      string        `json:"batch_id"`
	Source       Source        `json:"source"`
	Classified   []models.Bill `json:"classified"`
	Unclassified []models.Bill `json:"unclassified"`
	Errors       []RowError    `json:"errors"`
}

// Normalize 把原始行批量转换为规范账单并逐行分类。
// 批次是尽力而为的集合：坏行记录错误后跳过，不中断其余行；
// 持久化由调用方另行完成，这里不落库。
func Normalize(rows []RawRow, source Source, rs *classifier.RuleSet) (Result, error) {
	res := Result{
		BatchID: uuid.New().String(),
		Source:  source,
	}

	if source != SourceAlipay && source != SourceWechat {
		return res, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	for i, row := range rows {
		bill, err := normalizeRow(row, source, rs)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Index: i, Err: err, Msg: err.Error()})
			continue
		}
		if bill.Category == models.CategoryUnclassified {
			res.Unclassified = append(res.Unclassified, bill)
		} else {
			res.Classified = append(res.Classified, bill)
		}
	}
	return res, nil
}

func normalizeRow(row RawRow, source Source, rs *classifier.RuleSet) (models.Bill, error) {
	billDate, err := parseBillDate(row.Time)
	if err != nil {
		return models.Bill{}, err
	}

	magnitude, err := parseAmount(row.Amount)
	if err != nil {
		return models.Bill{}, err
	}

	var (
		direction models.Direction
		amount    decimal.Decimal
		remark    string
	)

	switch source {
	case SourceAlipay:
		// 支付宝消费账单都是支出
		direction = models.DirectionExpense
		amount = magnitude.Abs().Neg()
		remark = row.Product
	case SourceWechat:
		switch strings.TrimSpace(row.Direction) {
		case "支出", "支 出":
			direction = models.DirectionExpense
			amount = magnitude.Abs().Neg()
		case "收入", "收 入":
			direction = models.DirectionIncome
			amount = magnitude.Abs()
		default:
			return models.Bill{}, fmt.Errorf("%w: %q", ErrUnknownDirection, row.Direction)
		}
		remark = fmt.Sprintf("微信-%s-%s", row.Counterpart, row.Product)
	}

	category, ok := rs.Classify(row.Product, row.Counterpart, row.Category)
	if !ok {
		category = models.CategoryUnclassified
	}

	return models.Bill{
		BillDate: billDate,
		Type:     direction,
		Category: category,
		Amount:   amount,
		Remark:   remark,
		Raw:      row.Raw,
	}, nil
}

// parseBillDate 把交易时间文本转成 YYYYMMDD 整数
func parseBillDate(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: 空日期", ErrBadDate)
	}
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006/1/2 15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return models.DateInt(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// parseAmount 去掉货币符号和千分位后解析金额
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("¥", "", "￥", "", ",", "", " ", "").Replace(s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: 空金额", ErrBadAmount)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}
	return d, nil
}

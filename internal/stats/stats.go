package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/zjzjzjzj1874/jinzhangben/internal/models"
	"github.com/zjzjzjzj1874/jinzhangben/internal/period"
)

// Summary 一个窗口内的收支汇总。支出以正数报告，Net = Income - Expense。
type Summary struct {
	StartDate int             `json:"start_date"`
	EndDate   int             `json:"end_date"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Net       decimal.Decimal `json:"net"`
}

// CategoryAmount 单个类别的汇总金额（绝对值）
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// MonthAmount 某年单个月份的收支
type MonthAmount struct {
	Month   int             `json:"month"` // 1-12
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// Summarize 汇总窗口内账单的收入、支出与结余。
// 收入 = 正金额之和；支出 = 负金额之和的绝对值；空窗口返回全零，不算错误。
// 对同一批账单和窗口重复调用结果相同。
func Summarize(bills []models.Bill, w period.Window) Summary {
	s := Summary{
		StartDate: w.StartDate(),
		EndDate:   w.EndDate(),
		Income:    decimal.Zero,
		Expense:   decimal.Zero,
		Net:       decimal.Zero,
	}

	for i := range bills {
		b := &bills[i]
		if !w.Contains(b.BillDate) {
			continue
		}
		if b.Amount.Sign() > 0 {
			s.Income = s.Income.Add(b.Amount)
		} else {
			s.Expense = s.Expense.Sub(b.Amount)
		}
	}

	s.Net = s.Income.Sub(s.Expense)
	return s
}

// CategorySummary 按类别汇总窗口内账单的绝对金额，按金额从大到小排序。
// direction 传空串时统计全部，传 income/expense 时只统计对应方向。
func CategorySummary(bills []models.Bill, w period.Window, direction models.Direction) []CategoryAmount {
	byCategory := make(map[string]*CategoryAmount)

	for i := range bills {
		b := &bills[i]
		if !w.Contains(b.BillDate) {
			continue
		}
		if direction != "" && b.Type != direction {
			continue
		}
		ca, ok := byCategory[b.Category]
		if !ok {
			ca = &CategoryAmount{Category: b.Category, Amount: decimal.Zero}
			byCategory[b.Category] = ca
		}
		ca.Amount = ca.Amount.Add(b.Amount.Abs())
		ca.Count++
	}

	out := make([]CategoryAmount, 0, len(byCategory))
	for _, ca := range byCategory {
		out = append(out, *ca)
	}
	// 金额相同按类别名排序，保证输出确定
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlySummary 把某一年的账单按月份汇总成 12 个月的收支序列
func MonthlySummary(bills []models.Bill, year int) []MonthAmount {
	months := make([]MonthAmount, 12)
	for i := range months {
		months[i] = MonthAmount{
			Month:   i + 1,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Net:     decimal.Zero,
		}
	}

	for i := range bills {
		b := &bills[i]
		if b.BillDate/10000 != year {
			continue
		}
		m := b.BillDate / 100 % 100
		if m < 1 || m > 12 {
			continue
		}
		ma := &months[m-1]
		if b.Amount.Sign() > 0 {
			ma.Income = ma.Income.Add(b.Amount)
		} else {
			ma.Expense = ma.Expense.Sub(b.Amount)
		}
	}

	for i := range months {
		months[i].Net = months[i].Income.Sub(months[i].Expense)
	}
	return months
}

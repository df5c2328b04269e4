package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bill 表示一笔账单记录
// 日期用 YYYYMMDD 整数存储，方便按整数区间查询；
// 金额带符号：收入为正，支出为负，符号在导入/录入时确定，之后不再推导。
type Bill struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	BillDate int             `gorm:"index;not null" json:"bill_date"` // 如 20250102
	Type     Direction       `gorm:"size:16;index;not null" json:"type"`
	Category string          `gorm:"size:32;index;not null" json:"category"`
	Amount   decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Remark   string          `gorm:"size:255" json:"remark"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// 原始导入行，仅在内存中供人工核对未分类账单使用，不落库
	Raw map[string]string `gorm:"-" json:"raw,omitempty"`
}

// TableName 指定表名
func (Bill) TableName() string {
	return "bills"
}

// Date 把 BillDate 转成 time.Time（本地时区当天零点）
func (b *Bill) Date() time.Time {
	y := b.BillDate / 10000
	m := b.BillDate / 100 % 100
	d := b.BillDate % 100
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local)
}

// Validate 校验符号约定和类别归属
func (b *Bill) Validate() error {
	if !b.Type.Valid() {
		return fmt.Errorf("无效的收支方向: %q", b.Type)
	}
	if b.Type == DirectionIncome && b.Amount.Sign() <= 0 {
		return fmt.Errorf("收入金额必须为正数: %s", b.Amount)
	}
	if b.Type == DirectionExpense && b.Amount.Sign() >= 0 {
		return fmt.Errorf("支出金额必须为负数: %s", b.Amount)
	}
	if b.Category == "" {
		return fmt.Errorf("类别不能为空")
	}
	if b.Category == CategoryUnclassified {
		return nil
	}
	dir, ok := CategoryDirection(b.Category)
	if !ok {
		return fmt.Errorf("未知类别: %q", b.Category)
	}
	if dir != b.Type {
		return fmt.Errorf("类别 %q 与收支方向 %q 不匹配", b.Category, b.Type)
	}
	return nil
}

// FormatDate 把 YYYYMMDD 整数格式化为 YYYY-MM-DD
func FormatDate(billDate int) string {
	return fmt.Sprintf("%04d-%02d-%02d", billDate/10000, billDate/100%100, billDate%100)
}

// DateInt 把 time.Time 转成 YYYYMMDD 整数
func DateInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

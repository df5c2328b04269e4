package util

import (
	"fmt"
	"time"

	"github.com/zjzjzjzj1874/jinzhangben/internal/models"
)

// ValidateAmount 验证金额幅度（必须为正数且不超过上限）
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}
	if amount >= 10000000 { // 限制最大金额为1千万
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateBillDate 验证 YYYYMMDD 整数日期是否是真实存在的日子
func ValidateBillDate(billDate int) error {
	s := fmt.Sprintf("%08d", billDate)
	if _, err := time.Parse("20060102", s); err != nil {
		return fmt.Errorf("invalid bill date %d: %w", billDate, err)
	}
	return nil
}

// ValidateCategory 验证分类必须属于类别集合（或为未分类占位）
func ValidateCategory(category string) error {
	if category == "" {
		return fmt.Errorf("category is empty")
	}
	if category == models.CategoryUnclassified {
		return nil
	}
	if _, ok := models.CategoryDirection(category); !ok {
		return fmt.Errorf("unknown category: %q", category)
	}
	return nil
}

package period

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// ============ 自然周 ============

func TestResolve_Week(t *testing.T) {
	cases := []struct {
		ref       time.Time
		wantStart int
		wantEnd   int
	}{
		{date(2025, 1, 8), 20250106, 20250112},  // 周三
		{date(2025, 1, 6), 20250106, 20250112},  // 周一当天
		{date(2025, 1, 12), 20250106, 20250112}, // 周日
		{date(2025, 1, 1), 20241230, 20250105},  // 跨年
	}
	for _, c := range cases {
		w, err := Resolve(c.ref, Week)
		if err != nil {
			t.Fatalf("Resolve(%v, week) error: %v", c.ref, err)
		}
		if w.StartDate() != c.wantStart || w.EndDate() != c.wantEnd {
			t.Errorf("Resolve(%v, week) = [%d, %d], want [%d, %d]",
				c.ref, w.StartDate(), w.EndDate(), c.wantStart, c.wantEnd)
		}
	}
}

// ============ 自然月 ============

func TestResolve_Month(t *testing.T) {
	cases := []struct {
		ref       time.Time
		wantStart int
		wantEnd   int
	}{
		{date(2025, 2, 15), 20250201, 20250228}, // 平年二月
		{date(2024, 2, 15), 20240201, 20240229}, // 闰年二月
		{date(2025, 4, 1), 20250401, 20250430},  // 30天月
		{date(2025, 1, 31), 20250101, 20250131}, // 31天月
		{date(2025, 12, 5), 20251201, 20251231},
	}
	for _, c := range cases {
		w, err := Resolve(c.ref, Month)
		if err != nil {
			t.Fatalf("Resolve(%v, month) error: %v", c.ref, err)
		}
		if w.StartDate() != c.wantStart || w.EndDate() != c.wantEnd {
			t.Errorf("Resolve(%v, month) = [%d, %d], want [%d, %d]",
				c.ref, w.StartDate(), w.EndDate(), c.wantStart, c.wantEnd)
		}
	}
}

// ============ 自然季度 ============

func TestResolve_Quarter(t *testing.T) {
	cases := []struct {
		ref       time.Time
		wantStart int
		wantEnd   int
	}{
		{date(2025, 2, 10), 20250101, 20250331},
		{date(2025, 4, 1), 20250401, 20250630},
		{date(2025, 9, 30), 20250701, 20250930},
		{date(2025, 11, 11), 20251001, 20251231},
	}
	for _, c := range cases {
		w, err := Resolve(c.ref, Quarter)
		if err != nil {
			t.Fatalf("Resolve(%v, quarter) error: %v", c.ref, err)
		}
		if w.StartDate() != c.wantStart || w.EndDate() != c.wantEnd {
			t.Errorf("Resolve(%v, quarter) = [%d, %d], want [%d, %d]",
				c.ref, w.StartDate(), w.EndDate(), c.wantStart, c.wantEnd)
		}
		// 季度窗口必须正好跨三个自然月
		months := int(w.End.Month()) - int(w.Start.Month()) + 1
		if months != 3 {
			t.Errorf("Resolve(%v, quarter) 跨 %d 个月, want 3", c.ref, months)
		}
		if w.Start.Day() != 1 {
			t.Errorf("Resolve(%v, quarter) 起始日 %d, want 1", c.ref, w.Start.Day())
		}
	}
}

// ============ 自然年 ============

func TestResolve_Year(t *testing.T) {
	w, err := Resolve(date(2025, 6, 15), Year)
	if err != nil {
		t.Fatalf("Resolve(year) error: %v", err)
	}
	if w.StartDate() != 20250101 || w.EndDate() != 20251231 {
		t.Errorf("Resolve(year) = [%d, %d], want [20250101, 20251231]", w.StartDate(), w.EndDate())
	}
}

// ============ 非法周期 ============

func TestResolve_InvalidGranularity(t *testing.T) {
	_, err := Resolve(date(2025, 1, 1), Granularity("decade"))
	if !errors.Is(err, ErrInvalidGranularity) {
		t.Errorf("Resolve(decade) error = %v, want ErrInvalidGranularity", err)
	}
}

// ============ 区间构造与包含判断 ============

func TestFromRange(t *testing.T) {
	w, err := FromRange(20250105, 20250203)
	if err != nil {
		t.Fatalf("FromRange error: %v", err)
	}
	if !w.Contains(20250105) || !w.Contains(20250203) {
		t.Error("窗口两端都应包含")
	}
	if w.Contains(20250104) || w.Contains(20250204) {
		t.Error("窗口外日期不应包含")
	}

	if _, err := FromRange(20250203, 20250105); err == nil {
		t.Error("起始晚于结束应报错")
	}
	if _, err := FromRange(20251301, 20251401); err == nil {
		t.Error("非法日期应报错")
	}
}

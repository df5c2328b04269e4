package period

import (
	"errors"
	"fmt"
	"time"
)

// Granularity 统计周期类型
type Granularity string

const (
	Week    Granularity = "week"    // 自然周，周一到周日
	Month   Granularity = "month"   // 自然月，1号到月末
	Quarter Granularity = "quarter" // 自然季度，1/4/7/10月起的三个月
	Year    Granularity = "year"    // 自然年，1月1日到12月31日
)

// ErrInvalidGranularity 不支持的周期类型，不做静默兜底
var ErrInvalidGranularity = errors.New("invalid period granularity")

// Window 一个闭区间的自然日历窗口，Start <= End，都含当天
type Window struct {
	Start time.Time
	End   time.Time
}

// StartDate 窗口起始日的 YYYYMMDD 整数
func (w Window) StartDate() int {
	return dateInt(w.Start)
}

// EndDate 窗口结束日的 YYYYMMDD 整数
func (w Window) EndDate() int {
	return dateInt(w.End)
}

// Contains 判断 YYYYMMDD 日期是否落在窗口内（两端都含）
func (w Window) Contains(billDate int) bool {
	return billDate >= w.StartDate() && billDate <= w.EndDate()
}

// Resolve 根据参考日期和周期类型计算自然日历窗口。
// 纯函数，无 I/O；不认识的周期类型返回 ErrInvalidGranularity。
func Resolve(ref time.Time, g Granularity) (Window, error) {
	y, m, d := ref.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())

	switch g {
	case Week:
		// time.Weekday 周日为 0，换算成周一为 0 的偏移
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return Window{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case Month:
		start := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
		return Window{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case Quarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		start := time.Date(y, qm, 1, 0, 0, 0, 0, ref.Location())
		return Window{Start: start, End: start.AddDate(0, 3, -1)}, nil
	case Year:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, ref.Location())
		return Window{Start: start, End: time.Date(y, time.December, 31, 0, 0, 0, 0, ref.Location())}, nil
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
	}
}

// FromRange 用一对 YYYYMMDD 整数直接构造窗口，start 必须不晚于 end
func FromRange(start, end int) (Window, error) {
	s, err := parseDateInt(start)
	if err != nil {
		return Window{}, err
	}
	e, err := parseDateInt(end)
	if err != nil {
		return Window{}, err
	}
	if start > end {
		return Window{}, fmt.Errorf("start date %d after end date %d", start, end)
	}
	return Window{Start: s, End: e}, nil
}

func dateInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func parseDateInt(v int) (time.Time, error) {
	t, err := time.ParseInLocation("20060102", fmt.Sprintf("%08d", v), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %d: %w", v, err)
	}
	return t, nil
}

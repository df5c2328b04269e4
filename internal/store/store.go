package store

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zjzjzjzj1874/jinzhangben/internal/models"
)

// BillStore 账单存取层。写入在 Insert/InsertBatch 里显式发生，
// 查询只读，不在内部做重试。
type BillStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

func New(db *gorm.DB, log zerolog.Logger) *BillStore {
	return &BillStore{db: db, log: log}
}

// Filter 查询过滤条件。金额上下限按正数幅度给出：
// 过滤支出时因为库里存的是负数，[min, max] 会翻转成 [-max, -min]，
// 这个翻转方向很容易写反，动之前先看 store 测试。
type Filter struct {
	Type      models.Direction
	Category  string
	Remark    string // 备注模糊匹配
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// Insert 插入一条账单，入库前校验符号约定和类别归属。
// Raw 字段不入库（gorm:"-"）。
func (s *BillStore) Insert(bill *models.Bill) error {
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("账单校验失败: %w", err)
	}
	if err := s.db.Create(bill).Error; err != nil {
		return fmt.Errorf("插入账单失败: %w", err)
	}
	s.log.Info().
		Uint("id", bill.ID).
		Int("bill_date", bill.BillDate).
		Str("category", bill.Category).
		Str("amount", bill.Amount.String()).
		Msg("账单已入库")
	return nil
}

// InsertBatch 逐条插入一批账单。没有多行事务：失败的行记下来继续插，
// 部分成功是预期结果不是故障。返回成功数和每行的失败原因。
func (s *BillStore) InsertBatch(bills []models.Bill) (int, []error) {
	var failed []error
	ok := 0
	for i := range bills {
		if err := s.Insert(&bills[i]); err != nil {
			s.log.Warn().Err(err).Int("index", i).Msg("批量导入跳过一行")
			failed = append(failed, fmt.Errorf("第 %d 行: %w", i, err))
			continue
		}
		ok++
	}
	return ok, failed
}

// QueryByDateRange 查询日期区间（两端都含）内的账单，可叠加过滤条件，
// 按日期、ID 倒序返回。
func (s *BillStore) QueryByDateRange(start, end int, f Filter) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.scope(start, end, f).
		Order("bill_date DESC, id DESC").
		Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("查询账单失败: %w", err)
	}
	return bills, nil
}

// All 返回全部账单，按日期、ID 正序，导出和备份用
func (s *BillStore) All() ([]models.Bill, error) {
	var bills []models.Bill
	err := s.db.Model(&models.Bill{}).
		Order("bill_date ASC, id ASC").
		Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("查询账单失败: %w", err)
	}
	return bills, nil
}

// CountByDateRange 统计日期区间内满足过滤条件的账单数
func (s *BillStore) CountByDateRange(start, end int, f Filter) (int64, error) {
	var total int64
	if err := s.scope(start, end, f).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("统计账单失败: %w", err)
	}
	return total, nil
}

// PageByYear 按年份分页查询，固定按日期、ID 倒序，
// 同样的入参永远返回同一页，所有页拼起来正好是该年的全量数据。
func (s *BillStore) PageByYear(year, page, size int) ([]models.Bill, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	start := year*10000 + 101
	end := year*10000 + 1231

	base := s.db.Model(&models.Bill{}).
		Where("bill_date >= ? AND bill_date <= ?", start, end)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计年度账单失败: %w", err)
	}

	var bills []models.Bill
	if err := base.Session(&gorm.Session{}).
		Order("bill_date DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&bills).Error; err != nil {
		return nil, 0, fmt.Errorf("查询年度账单失败: %w", err)
	}
	return bills, total, nil
}

// scope 构造带过滤条件的基础查询，列表和计数复用
func (s *BillStore) scope(start, end int, f Filter) *gorm.DB {
	q := s.db.Model(&models.Bill{}).
		Where("bill_date >= ? AND bill_date <= ?", start, end)

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Remark != "" {
		q = q.Where("remark LIKE ?", "%"+f.Remark+"%")
	}

	if f.Type == models.DirectionExpense {
		// 支出存负数：幅度下限变上界，上限变下界
		if f.MinAmount != nil {
			q = q.Where("amount <= ?", f.MinAmount.Abs().Neg())
		}
		if f.MaxAmount != nil {
			q = q.Where("amount >= ?", f.MaxAmount.Abs().Neg())
		}
	} else {
		if f.MinAmount != nil {
			q = q.Where("amount >= ?", f.MinAmount)
		}
		if f.MaxAmount != nil {
			q = q.Where("amount <= ?", f.MaxAmount)
		}
	}
	return q
}

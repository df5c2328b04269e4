package models

// Direction 收支方向
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Valid 判断是否为合法的收支方向
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// CategoryUnclassified 未能自动分类时的占位类别，需要人工处理
const CategoryUnclassified = "未分类"

// 收入类别（闭合集合，启动时确定，运行期不变）
const (
	IncomePartTime = "兼职收入"
	IncomeSubsidy  = "补贴"
	IncomeOther    = "其他收入"
)

// 支出类别
const (
	ExpenseFood               = "餐饮"
	ExpenseBadminton          = "羽毛球"
	ExpenseTransportation     = "交通"
	ExpenseEntertainment      = "娱乐"
	ExpenseDailyNecessities   = "日用品"
	ExpenseLivingExpenses     = "生活缴费"
	ExpenseCarMaintenance     = "小车维护"
	ExpenseCarInsurance       = "小车保险"
	ExpenseCarGas             = "小车加油"
	ExpenseParking            = "停车费"
	ExpenseClothing           = "服饰"
	ExpenseTravel             = "旅行"
	ExpenseBooks              = "书籍"
	ExpenseFitness            = "运动健身"
	ExpenseSocial             = "人情往来"
	ExpenseDress              = "美妆"
	ExpenseDonate             = "奉献"
	ExpenseHomeFurnishing     = "家居"
	ExpensePropertyManagement = "物业"
)

var incomeCategories = []string{
	IncomePartTime,
	IncomeSubsidy,
	IncomeOther,
}

var expenseCategories = []string{
	ExpenseFood,
	ExpenseBadminton,
	ExpenseTransportation,
	ExpenseEntertainment,
	ExpenseDailyNecessities,
	ExpenseLivingExpenses,
	ExpenseCarMaintenance,
	ExpenseCarInsurance,
	ExpenseCarGas,
	ExpenseParking,
	ExpenseClothing,
	ExpenseTravel,
	ExpenseBooks,
	ExpenseFitness,
	ExpenseSocial,
	ExpenseDress,
	ExpenseDonate,
	ExpenseHomeFurnishing,
	ExpensePropertyManagement,
}

// IncomeCategories 返回所有收入类别（副本，调用方可自由修改）
func IncomeCategories() []string {
	out := make([]string, len(incomeCategories))
	copy(out, incomeCategories)
	return out
}

// ExpenseCategories 返回所有支出类别
func ExpenseCategories() []string {
	out := make([]string, len(expenseCategories))
	copy(out, expenseCategories)
	return out
}

// AllCategories 返回收入 + 支出的全部类别
func AllCategories() []string {
	out := make([]string, 0, len(incomeCategories)+len(expenseCategories))
	out = append(out, incomeCategories...)
	out = append(out, expenseCategories...)
	return out
}

// IsIncomeCategory 判断类别是否属于收入集合
func IsIncomeCategory(name string) bool {
	for _, c := range incomeCategories {
		if c == name {
			return true
		}
	}
	return false
}

// IsExpenseCategory 判断类别是否属于支出集合
func IsExpenseCategory(name string) bool {
	for _, c := range expenseCategories {
		if c == name {
			return true
		}
	}
	return false
}

// CategoryDirection 返回类别所属方向；未分类或未知类别时 ok 为 false。
// 两个集合互不相交，一个类别只会属于一个方向。
func CategoryDirection(name string) (Direction, bool) {
	if IsIncomeCategory(name) {
		return DirectionIncome, true
	}
	if IsExpenseCategory(name) {
		return DirectionExpense, true
	}
	return "", false
}

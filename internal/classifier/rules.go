package classifier

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default 返回内置的通用分类规则集。
// 规则按声明顺序匹配，调整顺序会改变分类结果，修改时要注意。
func Default() *RuleSet {
	return &RuleSet{
		Counterparts: []CounterpartRule{
			// 交通相关
			{Pattern: "成都地铁运营有限公司", Category: "交通"},
			{Pattern: "滴滴出行科技有限公司", Category: "交通"},
			{Pattern: "滴滴出行", Category: "交通"},
			{Pattern: "哈啰出行", Category: "交通"},
			{Pattern: "成都天府通数字科技有限公司", Category: "交通"},

			// 餐饮相关
			{Pattern: "公司餐厅消费", Category: "餐饮"},
			{Pattern: "四川乡村基餐饮有限公司", Category: "餐饮"},
			{Pattern: "美团", Category: "餐饮"},
			{Pattern: "饿了么", Category: "餐饮"},
			{Pattern: "星巴克", Category: "餐饮"},
			{Pattern: "肯德基", Category: "餐饮"},
			{Pattern: "麦当劳", Category: "餐饮"},

			// 日用品相关
			{Pattern: "成都红旗连锁股份有限公司", Category: "日用品"},
			{Pattern: "四川舞东风超市连锁股份有限公司", Category: "日用品"},
			{Pattern: "四川永辉超市有限公司", Category: "日用品"},
			{Pattern: "永辉超市", Category: "日用品"},
			{Pattern: "沃尔玛", Category: "日用品"},
			{Pattern: "家乐福", Category: "日用品"},
			{Pattern: "淘宝平台商户", Category: "日用品"},

			// 停车费相关
			{Pattern: "深圳市微泊云科技有限公司", Category: "停车费"},
			{Pattern: "华敏物业", Category: "停车费"},
			{Pattern: "守权", Category: "停车费"},

			// 运动健身相关
			{Pattern: "闪动体育科技", Category: "羽毛球"},
			{Pattern: "Coriander. 京新海球馆 店长", Category: "羽毛球"},

			// 其他
			{Pattern: "快剪", Category: "美妆"},
			{Pattern: "壳牌", Category: "小车加油"},
		},
		Keywords: []KeywordRule{
			{Category: "交通", Keywords: []string{
				"地铁", "公交", "打车", "出租车", "网约车", "共享单车",
				"哈啰单车", "哈啰", "天府通", "快车", "特惠快车",
			}},
			{Category: "餐饮", Keywords: []string{
				"外卖", "外卖订单", "咖啡", "奶茶", "零食", "小吃",
				"餐厅", "饭店", "食堂", "快餐", "餐饮店", "雪糕",
				"成都膳百味餐饮有限公司", "龙户人家", "浏阳蒸菜", "麻辣烫",
				"真霸牛肉", "轩味轩", "乐意豌杂面", "三餐馆子", "调夫五味",
			}},
			{Category: "日用品", Keywords: []string{
				"超市", "便利店", "购物", "日用", "生活用品",
				"店内购物", "满彭菜场", "集刻便利店", "盒马鲜生",
				"天猫超市", "永辉", "龙湖", "抖音电商",
			}},
			{Category: "服饰", Keywords: []string{
				"衣服", "鞋子", "包包", "配饰", "拖鞋",
			}},
			{Category: "运动健身", Keywords: []string{
				"健身", "游泳", "运动", "球类", "泳镜",
			}},
			{Category: "羽毛球", Keywords: []string{
				"羽毛球", "羽毛球馆", "四川启成体育",
			}},
			{Category: "停车费", Keywords: []string{
				"停车缴费", "川GE",
			}},
			{Category: "小车加油", Keywords: []string{
				"加油", "油费", "油卡",
			}},
		},
	}
}

// Load 从规则文件加载规则集（yaml，counterparts / keywords 两个列表，
// 列表保证顺序）。path 为空时返回内置规则。
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rs RuleSet
	if err := v.UnmarshalKey("counterparts", &rs.Counterparts); err != nil {
		return nil, fmt.Errorf("unmarshal counterpart rules: %w", err)
	}
	if err := v.UnmarshalKey("keywords", &rs.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshal keyword rules: %w", err)
	}
	if len(rs.Counterparts) == 0 && len(rs.Keywords) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}
	return &rs, nil
}

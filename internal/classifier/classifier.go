package classifier

import "strings"

// CounterpartRule 按交易对方名称匹配的规则
type CounterpartRule struct {
	Pattern  string `mapstructure:"pattern" json:"pattern"`
	Category string `mapstructure:"category" json:"category"`
}

// KeywordRule 按商品名称关键词匹配的规则，一条规则对应一个类别的一组关键词
type KeywordRule struct {
	Category string   `mapstructure:"category" json:"category"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

// RuleSet 分类规则集。规则在启动时加载，分类过程中不变。
// 两层规则都按声明顺序逐条匹配，命中即返回：先交易对方，后商品关键词。
// 匹配是纯子串包含，不分词，所以靠前的宽泛关键词会抢走靠后的精确关键词，
// 顺序本身就是规则的一部分。
type RuleSet struct {
	Counterparts []CounterpartRule
	Keywords     []KeywordRule
}

// Classify 对一条账单做分类。
//
//	product     商品名称/描述
//	counterpart 交易对方
//	existing    数据源自带的分类，非空时原样返回（上游分类优先于规则推断）
//
// 无法分类时返回 ("", false)。纯函数，无 I/O，入参为空串时照常工作。
func (rs *RuleSet) Classify(product, counterpart, existing string) (string, bool) {
	if trimmed := strings.TrimSpace(existing); trimmed != "" {
		return trimmed, true
	}

	for _, r := range rs.Counterparts {
		if strings.Contains(counterpart, r.Pattern) {
			return r.Category, true
		}
	}

	for _, r := range rs.Keywords {
		for _, kw := range r.Keywords {
			if strings.Contains(product, kw) {
				return r.Category, true
			}
		}
	}

	return "", false
}

package domain

// TopicWeight is a keyword with its conversion multiplier.
type TopicWeight struct {
	Keyword string  `yaml:"keyword"`
	Weight  float64 `yaml:"weight"`
}

// Vocabulary holds the keyword lists used by relevance and sentiment.
// It is data, loaded from file, with DefaultVocabulary as fallback.
type Vocabulary struct {
	FinanceKeywords  []string      `yaml:"finance_keywords"`
	PositiveKeywords []string      `yaml:"positive_keywords"`
	NegativeKeywords []string      `yaml:"negative_keywords"`
	StopWords        []string      `yaml:"stop_words"`
	TopicWeights     []TopicWeight `yaml:"topic_weights"`
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		FinanceKeywords: []string{
			"股", "股市", "A股", "港股", "美股", "大盘", "指数", "涨停", "跌停",
			"牛市", "熊市", "基金", "证券", "券商", "上市", "IPO", "市值",
			"芯片", "半导体", "AI", "人工智能", "新能源", "光伏", "锂电", "储能",
			"汽车", "医药", "军工", "房地产", "银行", "保险", "白酒",
			"政策", "央行", "降息", "降准", "加息", "利率", "汇率", "GDP", "CPI",
			"证监会", "财政", "货币", "刺激", "改革", "监管",
			"业绩", "财报", "营收", "利润", "分红", "并购", "重组",
		},
		PositiveKeywords: []string{
			"利好", "大涨", "暴涨", "涨停", "新高", "突破", "牛市", "反弹",
			"加仓", "买入", "增持", "推荐", "看好", "机遇", "政策支持",
			"业绩预增", "超预期", "景气度", "高增长",
		},
		NegativeKeywords: []string{
			"利空", "大跌", "暴跌", "跌停", "新低", "破位", "熊市", "回调",
			"减仓", "卖出", "减持", "风险", "看空", "危机", "政策收紧",
			"业绩下滑", "不及预期", "亏损", "退市",
		},
		StopWords: []string{
			"的", "是", "在", "了", "和", "与", "或", "等", "及", "为", "对",
			"这", "那", "有", "被", "将", "从", "到", "把", "也", "就", "都",
			"我们", "你们", "他们", "什么", "怎么", "如何", "为什么", "一个",
			"the", "and", "for", "with", "from", "that", "this", "are", "was",
		},
		TopicWeights: []TopicWeight{
			{Keyword: "政策", Weight: 2.0},
			{Keyword: "利好", Weight: 1.8},
			{Keyword: "涨停", Weight: 1.8},
			{Keyword: "龙头", Weight: 1.7},
			{Keyword: "机构", Weight: 1.6},
			{Keyword: "外资", Weight: 1.6},
			{Keyword: "北向", Weight: 1.6},
			{Keyword: "重组", Weight: 1.5},
			{Keyword: "并购", Weight: 1.5},
			{Keyword: "IPO", Weight: 1.5},
			{Keyword: "业绩", Weight: 1.3},
			{Keyword: "财报", Weight: 1.3},
			{Keyword: "板块", Weight: 1.2},
			{Keyword: "概念", Weight: 1.2},
			{Keyword: "题材", Weight: 1.2},
			{Keyword: "股票", Weight: 1.0},
			{Keyword: "股市", Weight: 1.0},
			{Keyword: "A股", Weight: 1.0},
		},
	}
}

// WithDefaults fills empty lists from DefaultVocabulary.
func (v Vocabulary) WithDefaults() Vocabulary {
	d := DefaultVocabulary()
	if len(v.FinanceKeywords) == 0 {
		v.FinanceKeywords = d.FinanceKeywords
	}
	if len(v.PositiveKeywords) == 0 {
		v.PositiveKeywords = d.PositiveKeywords
	}
	if len(v.NegativeKeywords) == 0 {
		v.NegativeKeywords = d.NegativeKeywords
	}
	if len(v.StopWords) == 0 {
		v.StopWords = d.StopWords
	}
	if len(v.TopicWeights) == 0 {
		v.TopicWeights = d.TopicWeights
	}
	return v
}

package services

import (
	"fmt"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
)

// Ensure SourceRegistry implements the interface.
var _ driving.SourceCatalog = (*SourceRegistry)(nil)

// defaultSources is the built-in catalog.
var defaultSources = []domain.Source{
	{ID: "weibo", Name: "微博热搜", Category: domain.CategorySocial, Weight: 10, Influence: domain.InfluenceHigh},
	{ID: "douyin", Name: "抖音热点", Category: domain.CategorySocial, Weight: 9, Influence: domain.InfluenceHigh},
	{ID: "zhihu", Name: "知乎热榜", Category: domain.CategorySocial, Weight: 7, Influence: domain.InfluenceMedium},
	{ID: "bilibili", Name: "B站热门", Category: domain.CategorySocial, Weight: 6, Influence: domain.InfluenceMedium},
	{ID: "xiaohongshu", Name: "小红书", Category: domain.CategorySocial, Weight: 7, Influence: domain.InfluenceMedium},
	{ID: "kuaishou", Name: "快手热点", Category: domain.CategorySocial, Weight: 6, Influence: domain.InfluenceMedium},
	{ID: "tieba", Name: "百度贴吧", Category: domain.CategorySocial, Weight: 5, Influence: domain.InfluenceLow},
	{ID: "weixin", Name: "微信热文", Category: domain.CategorySocial, Weight: 8, Influence: domain.InfluenceHigh},
	{ID: "baidu", Name: "百度热搜", Category: domain.CategoryNews, Weight: 8, Influence: domain.InfluenceHigh},
	{ID: "jinritoutiao", Name: "今日头条", Category: domain.CategoryNews, Weight: 7, Influence: domain.InfluenceMedium},
	{ID: "tenxunwang", Name: "腾讯新闻", Category: domain.CategoryNews, Weight: 6, Influence: domain.InfluenceMedium},
	{ID: "netease", Name: "网易新闻", Category: domain.CategoryNews, Weight: 6, Influence: domain.InfluenceMedium},
	{ID: "ifeng", Name: "凤凰网", Category: domain.CategoryNews, Weight: 5, Influence: domain.InfluenceLow},
	{ID: "sina", Name: "新浪新闻", Category: domain.CategoryNews, Weight: 6, Influence: domain.InfluenceMedium},
	{ID: "sina_finance", Name: "新浪财经", Category: domain.CategoryFinance, Weight: 9, Influence: domain.InfluenceHigh},
	{ID: "eastmoney", Name: "东方财富", Category: domain.CategoryFinance, Weight: 9, Influence: domain.InfluenceHigh},
	{ID: "xueqiu", Name: "雪球", Category: domain.CategoryFinance, Weight: 8, Influence: domain.InfluenceHigh},
	{ID: "cls", Name: "财联社", Category: domain.CategoryFinance, Weight: 8, Influence: domain.InfluenceHigh},
	{ID: "wallstreetcn", Name: "华尔街见闻", Category: domain.CategoryFinance, Weight: 7, Influence: domain.InfluenceMedium},
	{ID: "tskr", Name: "36氪", Category: domain.CategoryTech, Weight: 6, Influence: domain.InfluenceMedium},
	{ID: "sspai", Name: "少数派", Category: domain.CategoryTech, Weight: 5, Influence: domain.InfluenceLow},
	{ID: "juejin", Name: "掘金", Category: domain.CategoryTech, Weight: 5, Influence: domain.InfluenceLow},
}

// SourceRegistry is the static catalog of content sources.
type SourceRegistry struct {
	sources []domain.Source
	byID    map[string]int
}

// NewSourceRegistry creates a registry over the built-in catalog.
func NewSourceRegistry() *SourceRegistry {
	return NewSourceRegistryWith(defaultSources)
}

// NewSourceRegistryWith creates a registry over a custom catalog.
func NewSourceRegistryWith(sources []domain.Source) *SourceRegistry {
	r := &SourceRegistry{
		sources: make([]domain.Source, len(sources)),
		byID:    make(map[string]int, len(sources)),
	}
	copy(r.sources, sources)
	for i, s := range r.sources {
		r.byID[s.ID] = i
	}
	return r
}

// All returns every source in catalog order.
func (r *SourceRegistry) All() []domain.Source {
	out := make([]domain.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Get returns a source by ID.
func (r *SourceRegistry) Get(id string) (domain.Source, error) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Source{}, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return r.sources[i], nil
}

// ByCategory returns the sources of one category in catalog order.
func (r *SourceRegistry) ByCategory(category domain.Category) []domain.Source {
	var out []domain.Source
	for _, s := range r.sources {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Resolve expands a selector into sources.
// Unknown IDs fail the whole selection.
func (r *SourceRegistry) Resolve(selector domain.SourceSelector) ([]domain.Source, error) {
	switch {
	case selector.Category != "":
		return r.ByCategory(selector.Category), nil
	case len(selector.IDs) > 0:
		out := make([]domain.Source, 0, len(selector.IDs))
		for _, id := range selector.IDs {
			src, err := r.Get(id)
			if err != nil {
				return nil, fmt.Errorf("%w: unknown source %s", domain.ErrInvalidInput, id)
			}
			out = append(out, src)
		}
		return out, nil
	default:
		return r.All(), nil
	}
}

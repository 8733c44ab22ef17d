package openai

// defaultSystemPrompt is the fallback system message when no PromptStore is configured.
const defaultSystemPrompt = `你是一名首席投资策略师，专注于A股热点题材与流量分析。
必须给出明确的结论，只输出纯JSON格式。`

// defaultUserPrompt is the fallback context framing when no PromptStore is configured.
const defaultUserPrompt = `以下是本轮新闻流量快照的量化结果（JSON）：

%s

以JSON格式输出，键为 affected_sectors, recommended_stocks, risk_level,
risk_factors, advice, confidence (0-1), summary。只输出JSON。`

package constants

type Topic string

const (
	TopicOptionsBasics         Topic = "Options Basics"
	TopicOptionsGreeks         Topic = "Options Greeks"
	TopicOptionsPricing        Topic = "Options Pricing"
	TopicFuturesTrading        Topic = "Futures Trading"
	TopicDerivativesMargining  Topic = "Derivatives Margining"
	TopicClearingSettlement    Topic = "Clearing & Settlement"
	TopicRiskManagement        Topic = "Risk Management"
	TopicMarketMicrostructure  Topic = "Market Microstructure & Liquidity"
	TopicPortfolioRisk         Topic = "Portfolio Risk"
	TopicRegulatoryCompliance  Topic = "Regulatory Compliance"
	TopicIndexConstruction     Topic = "Index Construction"
	TopicForwardVsFutures      Topic = "Forward vs Futures"
	TopicDerivativesAccounting Topic = "Derivatives Accounting"
	TopicFuturesArbitrage      Topic = "Futures Arbitrage"
	TopicInvestmentPrinciples  Topic = "Investment Principles"
	TopicGeneral               Topic = "General"
)

// allTopics is ordered; ties in keyword score resolve to the earlier topic.
var allTopics = []Topic{
	TopicOptionsBasics,
	TopicOptionsGreeks,
	TopicOptionsPricing,
	TopicFuturesTrading,
	TopicDerivativesMargining,
	TopicClearingSettlement,
	TopicRiskManagement,
	TopicMarketMicrostructure,
	TopicPortfolioRisk,
	TopicRegulatoryCompliance,
	TopicIndexConstruction,
	TopicForwardVsFutures,
	TopicDerivativesAccounting,
	TopicFuturesArbitrage,
	TopicInvestmentPrinciples,
}

// Topics returns the ordered topic list without the General fallback.
func Topics() []Topic {
	out := make([]Topic, len(allTopics))
	copy(out, allTopics)
	return out
}

func AsStringSlice() []string {
	result := make([]string, 0, len(allTopics)+1)
	for _, t := range allTopics {
		result = append(result, string(t))
	}
	return append(result, string(TopicGeneral))
}

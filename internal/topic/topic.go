// Package topic assigns a coarse, non-authoritative topic label to a
// question from keyword hits.
package topic

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/exam-extractor/constants"
)

var keywords = map[constants.Topic][]string{
	constants.TopicOptionsBasics:         {"call option", "put option", "strike price", "exercise price", "right but not obligation", "european", "american"},
	constants.TopicOptionsGreeks:         {"delta", "gamma", "theta", "vega", "rho", "sensitivity", "volatility"},
	constants.TopicOptionsPricing:        {"premium", "intrinsic value", "time value", "in-the-money", "out-of-the-money", "at-the-money"},
	constants.TopicFuturesTrading:        {"futures contract", "long position", "short position", "lot size", "squaring off"},
	constants.TopicDerivativesMargining:  {"initial margin", "value at risk", "var", "mark to market", "mtm"},
	constants.TopicClearingSettlement:    {"clearing member", "non-clearing member", "clearing corporation", "settlement", "liquid assets"},
	constants.TopicRiskManagement:        {"risk", "hedge", "hedgers", "speculators", "stop loss", "position limits"},
	constants.TopicMarketMicrostructure:  {"impact cost", "liquidity"},
	constants.TopicPortfolioRisk:         {"diversification", "systematic risk", "unsystematic risk"},
	constants.TopicRegulatoryCompliance:  {"complaints", "unauthorized transaction", "scores", "sebi"},
	constants.TopicIndexConstruction:     {"nifty", "index", "stock split", "market capitalization", "weightage"},
	constants.TopicForwardVsFutures:      {"forward contract", "bilateral contract"},
	constants.TopicDerivativesAccounting: {"accounting", "profit and loss", "amortized", "income"},
	constants.TopicFuturesArbitrage:      {"calendar spread"},
	constants.TopicInvestmentPrinciples:  {"risk-free", "returns", "investment"},
}

type matcher struct {
	topic constants.Topic
	res   []*regexp.Regexp
}

// matchers is built once in topic order; keywords match on word
// boundaries so "var" does not hit "various".
var matchers = func() []matcher {
	out := make([]matcher, 0, len(keywords))
	for _, t := range constants.Topics() {
		m := matcher{topic: t}
		for _, kw := range keywords[t] {
			m.res = append(m.res, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		out = append(out, m)
	}
	return out
}()

// Infer returns the topic with the most keyword hits across the given
// texts, or General when nothing matches.
func Infer(texts ...string) string {
	text := strings.ToLower(strings.Join(texts, " "))
	best, bestScore := constants.TopicGeneral, 0
	for _, m := range matchers {
		score := 0
		for _, re := range m.res {
			if re.MatchString(text) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = m.topic, score
		}
	}
	return string(best)
}

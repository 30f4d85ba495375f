package strategy

import "stockdeck/internal/models"

// Template is a catalog entry: a strategy shape with canned legs, rationale
// and static risk/reward figures. The engine fills in confidence.
type Template struct {
	Name       string
	Bias       models.Bias
	Legs       []string
	Rationale  string
	MaxProfit  string
	MaxLoss    string
	Breakeven  string
	RiskReward float64
}

// Catalog is the fixed set of strategy templates the engine selects from.
var Catalog = []Template{
	{
		Name:       "Long Equity",
		Bias:       models.BiasBullish,
		Legs:       []string{"Buy 100 shares"},
		Rationale:  "Momentum and trend both point higher; simple directional exposure.",
		MaxProfit:  "Unlimited",
		MaxLoss:    "Position value",
		Breakeven:  "Entry price",
		RiskReward: 2.0,
	},
	{
		Name:       "Bull Call Spread",
		Bias:       models.BiasBullish,
		Legs:       []string{"Buy 1 ATM call", "Sell 1 OTM call (+5%)"},
		Rationale:  "Defined-risk upside when the trend is up but premium is expensive.",
		MaxProfit:  "Spread width minus net debit",
		MaxLoss:    "Net debit paid",
		Breakeven:  "Long strike plus net debit",
		RiskReward: 1.5,
	},
	{
		Name:       "Cash-Secured Put",
		Bias:       models.BiasBullish,
		Legs:       []string{"Sell 1 OTM put (-5%)"},
		Rationale:  "Elevated volatility makes put premium attractive; willing to own lower.",
		MaxProfit:  "Premium received",
		MaxLoss:    "Strike minus premium (to zero)",
		Breakeven:  "Strike minus premium",
		RiskReward: 0.5,
	},
	{
		Name:       "Covered Call",
		Bias:       models.BiasNeutral,
		Legs:       []string{"Own 100 shares", "Sell 1 OTM call (+5%)"},
		Rationale:  "Harvest rich call premium against an existing position in a quiet tape.",
		MaxProfit:  "Premium plus upside to strike",
		MaxLoss:    "Position value minus premium",
		Breakeven:  "Cost basis minus premium",
		RiskReward: 0.8,
	},
	{
		Name:       "Bear Put Spread",
		Bias:       models.BiasBearish,
		Legs:       []string{"Buy 1 ATM put", "Sell 1 OTM put (-5%)"},
		Rationale:  "Defined-risk downside exposure while the trend is weakening.",
		MaxProfit:  "Spread width minus net debit",
		MaxLoss:    "Net debit paid",
		Breakeven:  "Long strike minus net debit",
		RiskReward: 1.5,
	},
	{
		Name:       "Iron Condor",
		Bias:       models.BiasNeutral,
		Legs:       []string{"Sell 1 OTM put (-5%)", "Buy 1 OTM put (-10%)", "Sell 1 OTM call (+5%)", "Buy 1 OTM call (+10%)"},
		Rationale:  "No directional edge; collect premium while price stays in the range.",
		MaxProfit:  "Net credit received",
		MaxLoss:    "Wing width minus net credit",
		Breakeven:  "Short strikes plus/minus credit",
		RiskReward: 0.4,
	},
	{
		Name:       "Long Straddle",
		Bias:       models.BiasNeutral,
		Legs:       []string{"Buy 1 ATM call", "Buy 1 ATM put"},
		Rationale:  "Volatility looks underpriced ahead of a potential large move either way.",
		MaxProfit:  "Unlimited",
		MaxLoss:    "Total premium paid",
		Breakeven:  "Strike plus/minus total premium",
		RiskReward: 2.5,
	},
}

// templateByName returns the catalog entry with the given name.
func templateByName(name string) (Template, bool) {
	for _, t := range Catalog {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

func (t Template) idea(confidence float64) models.StrategyIdea {
	return models.StrategyIdea{
		Name:       t.Name,
		Bias:       t.Bias,
		Legs:       t.Legs,
		Rationale:  t.Rationale,
		Confidence: confidence,
		MaxProfit:  t.MaxProfit,
		MaxLoss:    t.MaxLoss,
		Breakeven:  t.Breakeven,
		RiskReward: t.RiskReward,
	}
}

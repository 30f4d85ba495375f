package cli

import (
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stockdeck/internal/analysis/options"
	"stockdeck/internal/analysis/sentiment"
	"stockdeck/internal/models"
	"stockdeck/internal/provider"
	"stockdeck/internal/strategy"
	"stockdeck/pkg/utils"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Run the full analysis pipeline for a symbol",
		Long: `Fetch history for a symbol and print the indicator snapshot, options
chain summary, headline sentiment, and generated trade ideas.`,
		Example: `  stockdeck analyze AAPL
  stockdeck analyze MSFT --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			symbol, err := provider.NormalizeSymbol(args[0])
			if err != nil {
				return err
			}

			bars, err := app.Provider.GetBars(ctx, provider.BarsRequest{
				Symbol:    symbol,
				Timeframe: models.TimeframeDay,
				Limit:     260,
			})
			if err != nil {
				return err
			}

			values, err := app.Indicators.Snapshot(ctx, bars)
			if err != nil {
				return err
			}

			in := strategy.Inputs{Bars: bars, Now: time.Now()}
			var chainSummary *options.Summary
			if chain, err := app.Provider.GetOptionChain(ctx, symbol, time.Time{}); err == nil {
				in.Chain = chain
				chainSummary, _ = options.Analyze(chain, time.Now())
			}
			if news, err := app.Provider.GetNews(ctx, symbol, 10); err == nil {
				sc := sentiment.Score(symbol, news)
				in.Sentiment = &sc
			}

			ideas, score, err := app.Strategies.Generate(in)
			if err != nil {
				return err
			}
			ideas = app.Advisor.Annotate(ctx, symbol, score, ideas)

			if output.IsJSON() {
				return output.JSON(map[string]any{
					"symbol":     symbol,
					"indicators": values,
					"options":    chainSummary,
					"sentiment":  in.Sentiment,
					"score":      score,
					"ideas":      ideas,
				})
			}

			printAnalysis(output, symbol, values, chainSummary, in.Sentiment, score, ideas)
			return nil
		},
	}
}

func printAnalysis(output *Output, symbol string, values map[string]float64,
	chain *options.Summary, sent *models.SentimentScore,
	score *models.SignalScore, ideas []models.StrategyIdea,
) {
	output.Bold("%s", symbol)
	output.Println()

	output.Bold("Indicators")
	for _, name := range sortedKeys(values) {
		output.Printf("  %-16s %.2f\n", name, values[name])
	}
	output.Println()

	if chain != nil {
		output.Bold("Options")
		output.Printf("  Expiry:          %s (%d DTE)\n", chain.Expiry.Format("2006-01-02"), chain.DTE)
		output.Printf("  ATM Strike:      %s (IV %.1f%%)\n", utils.FormatCurrency(chain.ATMStrike), chain.ATMIV)
		output.Printf("  Put/Call (OI):   %.2f\n", chain.PutCallRatioOI)
		output.Printf("  Max Pain:        %s\n", utils.FormatCurrency(chain.MaxPain))
		output.Printf("  Expected Move:   %s (%s)\n",
			utils.FormatCurrency(chain.ExpectedMove), utils.FormatPercent(chain.ExpectedMovePct))
		output.Printf("  IV Skew:         %.1f\n", chain.IVSkew)
		output.Println()
	}

	if sent != nil {
		output.Bold("Sentiment")
		output.Printf("  Score: %.2f (%s)\n", sent.Score, sent.Label)
		for _, h := range sent.Headlines {
			output.Dim("  %+.2f  %s", h.Score, h.Headline)
		}
		output.Println()
	}

	output.Bold("Signal")
	output.Printf("  Score: %.1f  %s\n", score.Score, output.Recommendation(score.Recommendation))
	for _, name := range sortedKeys(score.Components) {
		output.Printf("    %-8s %+.1f\n", name, score.Components[name])
	}
	output.Println()

	output.Bold("Ideas")
	for _, idea := range ideas {
		output.Printf("  %s (%s, confidence %.0f)\n", idea.Name, idea.Bias, idea.Confidence)
		output.Dim("    %s", idea.Rationale)
		if len(idea.Legs) > 0 {
			output.Dim("    Legs: %s", strings.Join(idea.Legs, "; "))
		}
		output.Dim("    Max profit: %s  Max loss: %s  Breakeven: %s",
			idea.MaxProfit, idea.MaxLoss, idea.Breakeven)
		if idea.Commentary != "" {
			output.Printf("    %s\n", idea.Commentary)
		}
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

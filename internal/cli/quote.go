package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stockdeck/internal/logging"
	"stockdeck/pkg/utils"
)

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Fetch quotes for one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			if output.IsJSON() {
				quotes := make([]any, 0, len(args))
				for _, symbol := range args {
					quote, err := app.Provider.GetQuote(ctx, strings.ToUpper(symbol))
					if err != nil {
						return err
					}
					quotes = append(quotes, quote)
				}
				return output.JSON(quotes)
			}

			table := NewTable(output, "SYMBOL", "LAST", "CHANGE", "HIGH", "LOW", "VOLUME", "SOURCE")
			for _, symbol := range args {
				quote, err := app.Provider.GetQuote(ctx, strings.ToUpper(symbol))
				if err != nil {
					output.Error("%s: %v", symbol, err)
					continue
				}
				logging.LogQuote(app.Logger, quote)

				table.AddRow(
					quote.Symbol,
					utils.FormatCurrency(quote.Last),
					output.FormatChangePercent(quote.ChangePercent),
					utils.FormatCurrency(quote.High),
					utils.FormatCurrency(quote.Low),
					utils.FormatCompact(float64(quote.Volume)),
					output.SourceTag(string(quote.Source)),
				)
			}
			table.Render()
			return nil
		},
	}
}

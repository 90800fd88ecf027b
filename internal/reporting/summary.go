package reporting

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"solar-platform/internal/modeling"
	"solar-platform/internal/models"
)

// SummaryOptions controls number formatting of a summary.
type SummaryOptions struct {
	Decimals int
}

func (o SummaryOptions) format(v float64) string {
	decimals := o.Decimals
	if decimals <= 0 {
		decimals = 4
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// WriteSummary prints one row per season in code order. Failed seasons show
// the failure reason; seasons with no data are listed as such.
func WriteSummary(w io.Writer, results map[models.Season]*modeling.SeasonResult, failures map[models.Season]error, opts SummaryOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "SEASON\tRECORDS\tTRAIN\tTEST\tR2\tMAE\tMSE\tEQUATION")
	for _, season := range models.Seasons {
		if result, ok := results[season]; ok {
			train, test := 0, 0
			if result.Split != nil {
				train, test = len(result.Split.Train), len(result.Split.Test)
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
				season,
				result.Records,
				train,
				test,
				opts.format(result.Metrics.R2),
				opts.format(result.Metrics.MAE),
				opts.format(result.Metrics.MSE),
				result.Equation(),
			)
			continue
		}
		if err, ok := failures[season]; ok {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\tskipped: %v\n", season, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t0\t-\t-\t-\t-\t-\tno data\n", season)
	}

	return tw.Flush()
}

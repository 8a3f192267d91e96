package experiment

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kailas-cloud/toolsel/internal/domain"
	domexp "github.com/kailas-cloud/toolsel/internal/domain/experiment"
)

// WriteReport prints the final summary block.
func WriteReport(w io.Writer, cfg domexp.Config, s domexp.Summary, usage domain.UsageSnapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Experiment\t%d tools, %d queries, top-%d, HyDE=%t\n",
		cfg.ToolCount(), cfg.QueryCount(), cfg.TopK(), cfg.UseHyDE())
	if s.Total == 0 {
		fmt.Fprintln(tw, "Results\tno results")
		return flush(tw)
	}

	fmt.Fprintf(tw, "Accuracy\t%.2f%% (%d/%d)\n", s.Accuracy*100, s.Correct, s.Total)
	fmt.Fprintf(tw, "Avg response time\tvector %v\tfull %v\n", s.AvgVectorResponseTime, s.AvgFullResponseTime)
	fmt.Fprintf(tw, "Avg token proxy\tvector %.1f\tfull %.1f\n", s.AvgVectorTokens, s.AvgFullTokens)
	fmt.Fprintf(tw, "Total token proxy\tvector %d\tfull %d\n", s.TotalVectorTokens, s.TotalFullTokens)
	fmt.Fprintf(tw, "Token reduction\t%.2f%%\n", s.TokenReduction*100)
	fmt.Fprintf(tw, "Provider usage\tembedding %d tokens / %d calls\tgeneration %d tokens / %d calls\n",
		usage.EmbeddingTokens, usage.EmbeddingCalls, usage.GenerationTokens, usage.GenerationCalls)
	return flush(tw)
}

func flush(tw *tabwriter.Writer) error {
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

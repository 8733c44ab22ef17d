package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// maxPrintedTopics caps the hot topic list in reports.
const maxPrintedTopics = 10

const timeLayout = "2006-01-02 15:04"

func printFetch(cmd *cobra.Command, fetch *domain.FetchResult) {
	if fetch == nil {
		return
	}
	cmd.Printf("Sources: %d/%d succeeded\n", fetch.Succeeded, fetch.Attempted)
	for _, f := range fetch.Failures() {
		cmd.Printf("  %s %s: %s\n", errorStyle.Render("x"), f.SourceID, mutedStyle.Render(string(f.Kind)))
	}
}

func printSnapshot(cmd *cobra.Command, snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	cmd.Println()
	cmd.Println(title("Attention Flow"))
	cmd.Printf("  Snapshot: #%d at %s\n", snap.ID, snap.FetchTime.Local().Format(timeLayout))
	cmd.Printf("  Flow score: %d / %d (%s)\n", snap.TotalScore, domain.MaxFlowScore, tierStyle(snap.FlowLevel).Render(snap.FlowLevel))
	c := snap.CategoryScores
	cmd.Printf("  Categories: social %d, news %d, finance %d, tech %d\n", c.Social, c.News, c.Finance, c.Tech)
	cmd.Printf("  Finance-relevant records: %d\n", len(snap.RelevantRecords))

	if len(snap.HotTopics) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(headerStyle.Render("Hot topics:"))
	for i, t := range snap.HotTopics {
		if i >= maxPrintedTopics {
			break
		}
		cmd.Printf("  %2d. %s  heat %d  %s\n", i+1, t.Topic, t.Heat,
			mutedStyle.Render(fmt.Sprintf("(%d sources)", t.CrossPlatform)))
	}
}

func printModel(cmd *cobra.Command, m *domain.ModelResult) {
	if m == nil {
		return
	}
	cmd.Println()
	cmd.Println(title("Flow Model"))
	cmd.Printf("  Conversion: %.4f%% (%s)\n", m.Conversion.Rate*100, m.Conversion.Analysis)
	cmd.Printf("  Volume: %.2f x100M from %d participants (%s)\n", m.Volume.Volume, m.Volume.Participants, m.Volume.Level)
	cmd.Printf("  Flow type: %s\n", m.FlowType.Type)
	cmd.Printf("  Viral K: %.2f (%s)\n", m.Viral.K, m.Viral.Trend)
	for _, line := range m.Summary {
		cmd.Printf("  %s %s\n", mutedStyle.Render("-"), line)
	}
}

func printSentiment(cmd *cobra.Command, s *domain.SentimentResult) {
	if s == nil {
		return
	}
	cmd.Println()
	cmd.Println(title("Sentiment"))
	cmd.Printf("  Index: %d (%s)\n", s.Index, s.Class)
	cmd.Printf("  Stage: %s, signal %s\n", s.Stage.Stage, s.Stage.Signal)
	if s.Stage.Rationale != "" {
		cmd.Printf("  %s\n", mutedStyle.Render(s.Stage.Rationale))
	}
	cmd.Printf("  Momentum: %.2f (%s, %s)\n", s.Momentum.Value, s.Momentum.Level, s.Momentum.Direction)
	cmd.Printf("  Risk: %s (score %d)\n", tierStyle(s.Risk.Level).Render(s.Risk.Level), s.Risk.Score)
	cmd.Printf("  %s\n", s.Risk.Advisory)
	if s.LexiconPolarity != nil {
		cmd.Printf("  Lexicon polarity: %+.2f\n", *s.LexiconPolarity)
	}
}

func printAlerts(cmd *cobra.Command, alerts []domain.Alert) {
	if len(alerts) == 0 {
		cmd.Println("No alerts.")
		return
	}
	for i := range alerts {
		a := &alerts[i]
		level := alertLevelStyle(a.Level).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Level))))
		line := fmt.Sprintf("  %s %s", level, a.Title)
		if !a.CreatedAt.IsZero() {
			line += "  " + mutedStyle.Render(a.CreatedAt.Local().Format(timeLayout))
		}
		cmd.Println(line)
		if a.Body != "" {
			cmd.Printf("      %s\n", a.Body)
		}
	}
}

func printAnalysis(cmd *cobra.Command, a *domain.AnalysisResult) {
	cmd.Println()
	cmd.Println(title("External Analysis"))
	if a == nil {
		cmd.Println(mutedStyle.Render("  not available, numeric output only"))
		return
	}
	cmd.Printf("  Model: %s  confidence %.0f%%\n", a.Model, a.Confidence*100)
	if a.Summary != "" {
		cmd.Printf("  %s\n", a.Summary)
	}
	if len(a.AffectedSectors) > 0 {
		cmd.Printf("  Sectors: %s\n", strings.Join(a.AffectedSectors, ", "))
	}
	if len(a.RecommendedStocks) > 0 {
		cmd.Printf("  Stocks: %s\n", strings.Join(a.RecommendedStocks, ", "))
	}
	cmd.Printf("  Risk: %s\n", a.RiskLevel)
	for _, f := range a.RiskFactors {
		cmd.Printf("    - %s\n", f)
	}
	if a.Advice != "" {
		cmd.Printf("  Advice: %s\n", a.Advice)
	}
}

func printSignals(cmd *cobra.Command, s *domain.TradingSignal) {
	if s == nil {
		return
	}
	cmd.Println()
	cmd.Println(title("Trading Signal"))
	cmd.Printf("  Action: %s (confidence %d%%)\n", headerStyle.Render(s.Action), s.Confidence)
	cmd.Printf("  Risk: %s\n", tierStyle(s.RiskLevel).Render(s.RiskLevel))
	cmd.Printf("  %s\n", s.KeyMessage)
	cmd.Printf("  Advice: %s\n", s.Advice)
	if len(s.HotSectors) > 0 {
		cmd.Printf("  Hot sectors: %s\n", strings.Join(s.HotSectors, ", "))
	}
}

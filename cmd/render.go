package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/assembly-sim/assembly-sim/sim/experiment"
)

const labelWidth = 16

// summaryStyles are bound to the renderer of one output writer.
type summaryStyles struct {
	title, sectionHeader, label, value lipgloss.Style
}

func newSummaryStyles(r *lipgloss.Renderer) summaryStyles {
	return summaryStyles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		sectionHeader: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("8")),
		label: r.NewStyle().
			Width(labelWidth),
		value: r.NewStyle().
			Foreground(lipgloss.Color("15")),
	}
}

// renderSummary writes the replication summary as a styled table. Styles
// degrade to plain text when w is not a terminal.
func renderSummary(w io.Writer, plan experiment.Plan, sum experiment.Summary) {
	st := newSummaryStyles(lipgloss.NewRenderer(w))
	var b strings.Builder

	mode := "stochastic"
	if plan.Historical {
		mode = "historical (" + plan.HistoricalDir + ")"
	}
	b.WriteString(st.title.Render("=== Replication Summary ===") + "\n")
	st.writeRow(&b, "Replications", fmt.Sprintf("%d", sum.Replications))
	st.writeRow(&b, "Mode", mode)
	st.writeRow(&b, "Routing Policy", policyName(plan.Policy))
	st.writeRow(&b, "Horizon", fmt.Sprintf("%d products (warm-up %d)", plan.Horizon, plan.WarmUp))
	st.writeRow(&b, "Confidence", fmt.Sprintf("%.0f%%", sum.Confidence*100))
	st.writeRow(&b, "Mean Clock", formatEstimate(sum.Clock, "%.2f"))

	b.WriteString(st.sectionHeader.Render("Throughput (units/minute)") + "\n")
	for i, e := range sum.Throughput {
		st.writeRow(&b, fmt.Sprintf("  P%d", i+1), formatEstimate(e, "%.5f"))
	}
	b.WriteString(st.sectionHeader.Render("Inspector Idle Probability") + "\n")
	for i, e := range sum.InspectorIdle {
		st.writeRow(&b, fmt.Sprintf("  Inspector %d", i+1), formatEstimate(e, "%.4f"))
	}
	b.WriteString(st.sectionHeader.Render("Workstation Idle Probability") + "\n")
	for i, e := range sum.WorkstationIdle {
		st.writeRow(&b, fmt.Sprintf("  Workstation %d", i+1), formatEstimate(e, "%.4f"))
	}

	fmt.Fprint(w, b.String())
}

func (st summaryStyles) writeRow(b *strings.Builder, label, value string) {
	b.WriteString(st.label.Render(label) + " " + st.value.Render(value) + "\n")
}

// formatEstimate renders "mean ± half-width [lo, hi]" with verb for each number.
func formatEstimate(e experiment.Estimate, verb string) string {
	lo, hi := e.Bounds()
	return fmt.Sprintf(verb+" ± "+verb+"  ["+verb+", "+verb+"]", e.Mean, e.HalfWidth, lo, hi)
}

func policyName(name string) string {
	if name == "" {
		return "shortest-queue"
	}
	return name
}

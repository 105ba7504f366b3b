package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/greenops"
)

const (
	recommendationIndexWidth = 3
	recommendationTextWidth  = 90
)

// NewRecommendationsTable builds a read-only table of recommendations.
func NewRecommendationsTable(recs []string) table.Model {
	rows := make([]table.Row, 0, len(recs))
	for i, rec := range recs {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), rec})
	}

	styles := table.DefaultStyles()
	styles.Header = TableHeaderStyle
	styles.Selected = ValueStyle

	return table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: recommendationIndexWidth},
			{Title: "Recommendation", Width: recommendationTextWidth},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(false),
		table.WithStyles(styles),
	)
}

// RenderResult renders a prediction as the result panel.
func RenderResult(pred *engine.Prediction) string {
	if pred == nil {
		return ""
	}
	res := pred.Result

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Energy Efficiency Score"))
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render("Score:") + RenderScore(res.PredictedScore))
	if pred.Cached {
		b.WriteString(SubtleStyle.Render("  (cached)"))
	}
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Model:") + ValueStyle.Render(fmt.Sprintf("%s (%s)", res.Model.Name, res.Model.Algorithm)))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Accuracy:") + ValueStyle.Render(strconv.FormatFloat(res.Model.Accuracy, 'f', -1, 64)+"%"))
	b.WriteString("\n\n")

	b.WriteString(HeaderStyle.Render("Recommendations"))
	b.WriteString("\n")
	b.WriteString(NewRecommendationsTable(res.Recommendations).View())
	b.WriteString("\n\n")

	b.WriteString(HeaderStyle.Render("Potential Monthly Savings"))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Energy:") + ValueStyle.Render(greenops.FormatNumber(int64(res.Savings.EnergyKWhPerMonth))+" kWh"))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Water:") + ValueStyle.Render(greenops.FormatNumber(int64(res.Savings.WaterGalPerMonth))+" gallons"))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Annual cost:") + ValueStyle.Render("$"+greenops.FormatNumber(int64(res.Savings.CostUSDPerYear))))

	return BoxStyle.Render(b.String())
}

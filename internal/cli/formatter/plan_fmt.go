package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// FormatPlanList renders a styled plan list inside a bordered box.
func FormatPlanList(plans []*service.DefinitionResult) string {
	headers := []string{"ID", "NAME", "CULTURE", "STATUS", "ACTIVITIES", "WINDOW"}
	rows := make([][]string, 0, len(plans))

	for _, res := range plans {
		def := res.Definition
		rows = append(rows, []string{
			displayID(def),
			Bold(def.Name()),
			StyleBlue.Render(def.Culture().String()),
			ActiveIndicator(res.IsActive),
			fmt.Sprintf("%d + %d", def.ActivityCount(), def.UniversalActivityCount()),
			DateWindow(def.StartDate, def.EndDate),
		})
	}

	return RenderBox("Plans", RenderTable(headers, rows))
}

// FormatSearchResults renders search hits in rank order.
func FormatSearchResults(query string, hits []*service.DefinitionResult) string {
	if len(hits) == 0 {
		return Dim(fmt.Sprintf("No plans match %q.", query))
	}
	headers := []string{"#", "ID", "NAME", "STATUS"}
	rows := make([][]string, 0, len(hits))
	for i, res := range hits {
		rows = append(rows, []string{
			Dim(fmt.Sprintf("%d", i+1)),
			displayID(res.Definition),
			Bold(res.Definition.Name()),
			ActiveIndicator(res.IsActive),
		})
	}
	return RenderBox(fmt.Sprintf("Results for %q", query), RenderTable(headers, rows))
}

// FormatPlanDetail renders a plan card: metadata on the left, the activity
// graph on the right.
func FormatPlanDetail(res *service.DefinitionResult) string {
	left := buildPlanMetadata(res)
	right := buildActivityPanel(res.Definition)

	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
	return RenderBox(res.Definition.Name(), panels)
}

func buildPlanMetadata(res *service.DefinitionResult) string {
	def := res.Definition
	label := func(s string) string { return StyleDim.Render(fmt.Sprintf("%-14s", s)) }

	lines := []string{
		label("ID") + def.ID(),
		label("Alias") + orPlaceholder(def.Alias()),
		label("Status") + ActiveIndicator(res.IsActive),
		label("Culture") + CultureBadge(def.Culture()),
		label("Window") + DateWindow(def.StartDate, def.EndDate),
		label("Reentry") + orPlaceholder(string(def.ReentryMode)),
		label("Context key") + orPlaceholder(def.ContextKeyFactoryType),
		label("Taxonomy") + ClassificationBadges(def.Classifications),
		label("Created") + HumanTimestamp(def.CreatedDate()) + Dim(" by "+def.CreatedBy()),
	}
	if def.LastModifiedDate != nil {
		modified := label("Modified") + HumanTimestamp(*def.LastModifiedDate)
		if def.LastModifiedBy != "" {
			modified += Dim(" by " + def.LastModifiedBy)
		}
		lines = append(lines, modified)
	}
	if def.Description != "" {
		lines = append(lines, "", def.Description)
	}
	return strings.Join(lines, "\n")
}

func buildActivityPanel(def *domain.PlanDefinition) string {
	var b strings.Builder

	b.WriteString(Header("Activities"))
	b.WriteString("\n")
	if def.ActivityCount() == 0 {
		b.WriteString(Dim("none"))
		b.WriteString("\n")
	}
	for _, a := range def.Activities() {
		marker := "  "
		if a.ID == def.EntryActivityID {
			marker = StyleGreen.Render("▶ ")
		}
		b.WriteString(fmt.Sprintf("%s%s %s", marker, Bold(a.ID), StyleYellow.Render(a.ActivityTypeID)))
		if len(a.Paths) > 0 {
			b.WriteString(Dim(" → " + strings.Join(a.Paths, ", ")))
		}
		b.WriteString("\n")
		if params := formatParameters(a.Parameters); params != "" {
			b.WriteString("    " + Dim(params) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(Header("Universal"))
	b.WriteString("\n")
	if def.UniversalActivityCount() == 0 {
		b.WriteString(Dim("none"))
		b.WriteString("\n")
	}
	for _, u := range def.UniversalActivities() {
		pos := string(u.PlanProcessingPosition)
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			Bold(u.ID),
			StyleYellow.Render(u.ActivityTypeID),
			PositionColor(u.PlanProcessingPosition).Render(pos),
			Dim(fmt.Sprintf("#%d", u.Order)),
		))
		if params := formatParameters(u.Parameters); params != "" {
			b.WriteString("    " + Dim(params) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatParameters renders parameters as sorted key=value pairs.
func formatParameters(p domain.Parameters) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, " ")
}

func displayID(def *domain.PlanDefinition) string {
	if def.Alias() == "" {
		return Dim(def.DisplayID())
	}
	return def.DisplayID()
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("--")
	}
	return s
}

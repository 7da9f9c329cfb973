package handlers

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/inception/internal/provisioning"
	"github.com/imamik/inception/internal/store"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	greenStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	redStyle     = lipgloss.NewStyle().Foreground(colorRed)
	yellowStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

func statusStyle(status string) lipgloss.Style {
	switch provisioning.Status(status) {
	case provisioning.StatusActive:
		return greenStyle
	case provisioning.StatusError:
		return redStyle
	default:
		return yellowStyle
	}
}

func writeHeader(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  " + title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("═", 40)))
	b.WriteString("\n")
}

func writeSection(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  " + title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", 40)))
	b.WriteString("\n")
}

func writeNodes(b *strings.Builder, nodes []*provisioning.Node) {
	fmt.Fprintf(b, "  %-24s %-11s %-10s %s\n", "Hostname", "Role", "Instance", "Address")
	for _, n := range nodes {
		fmt.Fprintf(b, "  %-24s %-11s %-10s %s\n", n.Hostname, n.Role, dash(n.InstanceID), dash(n.IPAddress))
	}
}

// renderSummary renders the result of a successful create.
func renderSummary(s *provisioning.Summary) string {
	var b strings.Builder
	writeHeader(&b, "inception: "+s.Prefix+" is "+greenStyle.Render("Active"))
	fmt.Fprintf(&b, "  Cluster ID:   %s\n", s.ClusterID)
	fmt.Fprintf(&b, "  Floating IP:  %s\n", dash(s.FloatingIP))

	writeSection(&b, "Endpoints")
	for _, name := range slices.Sorted(maps.Keys(s.Endpoints)) {
		fmt.Fprintf(&b, "  %-24s %s\n", name, s.Endpoints[name])
	}

	writeSection(&b, "Nodes")
	writeNodes(&b, s.Nodes)
	return b.String()
}

// renderRecordList renders the list command table.
func renderRecordList(recs []*store.ClusterRecord) string {
	if len(recs) == 0 {
		return dimStyle.Render("No clusters recorded.") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %-10s %-26s %-8s %-16s %s\n", "PREFIX", "STATUS", "STATE", "WORKERS", "FLOATING IP", "UPDATED")
	for _, r := range recs {
		fmt.Fprintf(&b, "%-16s %s %-26s %-8d %-16s %s\n",
			r.Prefix,
			statusStyle(r.Status).Render(fmt.Sprintf("%-10s", r.Status)),
			r.State,
			r.NumWorkers,
			dash(r.FloatingIP),
			r.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return b.String()
}

// renderRecord renders the show command view.
func renderRecord(r *store.ClusterRecord) string {
	var b strings.Builder
	writeHeader(&b, "inception: "+r.Prefix)
	fmt.Fprintf(&b, "  Cluster ID:   %s\n", r.ID)
	fmt.Fprintf(&b, "  Status:       %s\n", statusStyle(r.Status).Render(r.Status))
	fmt.Fprintf(&b, "  State:        %s\n", r.State)
	fmt.Fprintf(&b, "  Floating IP:  %s\n", dash(r.FloatingIP))
	fmt.Fprintf(&b, "  Repository:   %s (%s)\n", r.RepoURL, r.RepoBranch)
	fmt.Fprintf(&b, "  Created:      %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))

	writeSection(&b, "Nodes")
	writeNodes(&b, r.Cluster().Nodes)
	return b.String()
}

// renderCleanupReport renders the outcome of a teardown.
func renderCleanupReport(r *provisioning.CleanupReport) string {
	var b strings.Builder
	writeSection(&b, "Teardown of "+r.Prefix)
	for _, name := range r.Deleted {
		b.WriteString("  " + greenStyle.Render("✓") + " " + name + "\n")
	}
	for _, f := range r.Failures {
		b.WriteString("  " + redStyle.Render("✗") + " " + f.Resource + ": " + f.Err.Error() + "\n")
	}
	if len(r.Deleted) == 0 && len(r.Failures) == 0 {
		b.WriteString(dimStyle.Render("  nothing to delete") + "\n")
	}
	return b.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

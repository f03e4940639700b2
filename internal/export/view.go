// Package export renders approved plans into downloadable documents.
package export

import (
	"fmt"
	"strings"

	"alcyxob/ifit-coach/internal/domain"
)

// View is the rendered, format-independent form of an approved plan.
type View struct {
	Title    string
	Subtitle []string
	Sections []Section
	Footer   string
}

type Section struct {
	Heading string
	Lines   []string
}

// BuildView lays out an approved plan. Callers must check approval first.
func BuildView(p *domain.PendingWorkoutPlan) *View {
	draft := p.PlanData.WorkoutGuideDraft
	v := &View{Title: "iFit Coach Workout Plan"}

	v.Subtitle = append(v.Subtitle,
		"Client: "+p.UserName,
		"Trainer: "+p.AssignedTrainerName,
	)
	if p.ApprovedAt != nil {
		v.Subtitle = append(v.Subtitle, "Approved: "+p.ApprovedAt.UTC().Format("2006-01-02"))
	}
	v.Subtitle = append(v.Subtitle, fmt.Sprintf("%d weeks, %d days per week, %s equipment",
		draft.ProgramWeeks, draft.WeeklyDays, draft.EquipmentTier))

	if notes := strings.TrimSpace(p.TrainerNotes); notes != "" {
		v.Sections = append(v.Sections, Section{Heading: "Trainer Notes", Lines: splitLines(notes)})
	}
	if overview := markdownLines(p.PlanData.PresentationMarkdown); len(overview) > 0 {
		v.Sections = append(v.Sections, Section{Heading: "Overview", Lines: overview})
	}
	if r := p.PlanData.ExtractedFromReport; r != nil {
		if lines := targetLines(r); len(lines) > 0 {
			v.Sections = append(v.Sections, Section{Heading: "Daily Targets", Lines: lines})
		}
	}

	phases := Section{Heading: "Phases"}
	for _, ph := range draft.Phases {
		phases.Lines = append(phases.Lines, fmt.Sprintf("%s (weeks %d-%d): %s", ph.Name, ph.Weeks[0], ph.Weeks[1], ph.Focus))
	}
	v.Sections = append(v.Sections, phases)

	for _, day := range draft.Days {
		v.Sections = append(v.Sections, daySection(day))
	}

	if s := strings.TrimSpace(draft.ProgressionNotes); s != "" {
		v.Sections = append(v.Sections, Section{Heading: "Progression", Lines: splitLines(s)})
	}
	if s := strings.TrimSpace(draft.SafetyNotes); s != "" {
		v.Sections = append(v.Sections, Section{Heading: "Safety", Lines: splitLines(s)})
	}
	v.Footer = p.PlanData.SignatureLine
	if v.Footer == "" {
		v.Footer = "Reviewed and approved by " + p.AssignedTrainerName
	}
	return v
}

func daySection(day domain.WorkoutDay) Section {
	s := Section{Heading: day.DayName}
	s.Lines = append(s.Lines, fmt.Sprintf("Warm-up: %s min. %s", formatMinutes(day.Warmup.DurationMin), day.Warmup.Notes))
	for _, ex := range day.Strength {
		line := fmt.Sprintf("- %s: %d x %s", ex.Movement, ex.Sets, ex.Reps)
		if ex.RPEOrTempo != "" {
			line += " @ " + ex.RPEOrTempo
		}
		var alts []string
		if ex.AltBodyweight != nil && *ex.AltBodyweight != "" {
			alts = append(alts, "bodyweight: "+*ex.AltBodyweight)
		}
		if ex.AltMinimal != nil && *ex.AltMinimal != "" {
			alts = append(alts, "minimal: "+*ex.AltMinimal)
		}
		if len(alts) > 0 {
			line += " (" + strings.Join(alts, "; ") + ")"
		}
		s.Lines = append(s.Lines, line)
	}
	s.Lines = append(s.Lines,
		fmt.Sprintf("Conditioning (%s): %s min. %s", day.Conditioning.Style, formatMinutes(day.Conditioning.DurationMin), day.Conditioning.Notes),
		fmt.Sprintf("Cool-down: %s min. %s", formatMinutes(day.Cooldown.DurationMin), day.Cooldown.Notes),
	)
	return s
}

func targetLines(r *domain.ExtractedReport) []string {
	var out []string
	add := func(label string, v *float64, unit string) {
		if v != nil {
			out = append(out, fmt.Sprintf("%s: %s %s", label, trimFloat(*v), unit))
		}
	}
	add("Calories", r.RecommendedCaloriesKcal, "kcal")
	add("Protein", r.ProteinTargetG, "g")
	add("Water", r.WaterTargetL, "L")
	add("Expected loss", r.PredictedLossKgPerWeek, "kg/week")
	return out
}

// markdownLines drops markdown markup the renderers cannot draw.
func markdownLines(md string) []string {
	var out []string
	for _, line := range splitLines(md) {
		line = strings.TrimLeft(line, "# ")
		line = strings.ReplaceAll(line, "**", "")
		line = strings.ReplaceAll(line, "__", "")
		if strings.HasPrefix(line, "* ") {
			line = "- " + line[2:]
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func formatMinutes(m float64) string { return trimFloat(m) }

func trimFloat(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", f), "0"), ".")
}

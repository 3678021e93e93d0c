// Package calendar lays out project mint dates on a month grid.
package calendar

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"sorta/internal/models"
)

// Day is one cell of the month grid.
type Day struct {
	Date     time.Time
	InMonth  bool
	Projects []models.Project
}

// View is a month as full weeks, Sunday first.
type View struct {
	Year  int
	Month time.Month
	Weeks [][7]Day
}

// Bounds returns [from, to) covering the month in loc.
func Bounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// ParseMonth reads YYYY-MM. An empty string is the month of now.
func ParseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month must be YYYY-MM, got %q", s)
	}
	return t.Year(), t.Month(), nil
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

// Month places projects on the grid by their mint date in loc. Projects
// outside the visible weeks are ignored; each day keeps mint time order.
func Month(projects []models.Project, year int, month time.Month, loc *time.Location) View {
	if loc == nil {
		loc = time.Local
	}
	byDay := make(map[string][]models.Project)
	for _, p := range projects {
		k := dayKey(p.MintAt.In(loc))
		byDay[k] = append(byDay[k], p)
	}
	for _, ps := range byDay {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].MintAt.Before(ps[j].MintAt) })
	}

	first, next := Bounds(year, month, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	v := View{Year: year, Month: month}
	for d := start; d.Before(next); {
		var week [7]Day
		for i := range week {
			week[i] = Day{
				Date:     d,
				InMonth:  d.Month() == month,
				Projects: byDay[dayKey(d)],
			}
			d = d.AddDate(0, 0, 1)
		}
		v.Weeks = append(v.Weeks, week)
	}
	return v
}

// Projects returns every project inside the month, in grid order.
func (v View) Projects() []models.Project {
	var out []models.Project
	for _, w := range v.Weeks {
		for _, d := range w {
			if d.InMonth {
				out = append(out, d.Projects...)
			}
		}
	}
	return out
}

// Upcoming returns up to limit projects minting at or after now.
func Upcoming(projects []models.Project, now time.Time, limit int) []models.Project {
	var out []models.Project
	for _, p := range projects {
		if !p.MintAt.Before(now) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MintAt.Before(out[j].MintAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Render prints the grid. Days with mints carry the number of projects, e.g.
// "14*2", and are listed under the grid.
func Render(out io.Writer, v View, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d\n", v.Month, v.Year)
	sb.WriteString(" Sun   Mon   Tue   Wed   Thu   Fri   Sat\n")
	for _, w := range v.Weeks {
		cells := make([]string, len(w))
		for i, d := range w {
			switch {
			case !d.InMonth:
				cells[i] = "     "
			case len(d.Projects) > 0:
				cells[i] = fmt.Sprintf("%5s", fmt.Sprintf("%d*%d", d.Date.Day(), len(d.Projects)))
			default:
				cells[i] = fmt.Sprintf("%5d", d.Date.Day())
			}
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		sb.WriteByte('\n')
	}

	for _, p := range v.Projects() {
		fmt.Fprintf(&sb, "  %s  %-20s %-4s %-4s %s\n",
			p.MintAt.In(loc).Format("Jan 02 15:04"), p.Name, p.Chain, p.WhitelistType, p.Status)
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

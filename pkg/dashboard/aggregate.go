package dashboard

import (
	"sort"

	"github.com/ruslano69/launchdash/pkg/launch"
)

// Chart titles.
const (
	TitleAllSites   = "Total Successful Launches by Site"
	titleSitePrefix = "Total Successful Launches from Site: "
)

// Field names shown on the scatter axes and legend.
const (
	FieldPayloadMass = "PayloadMass"
	FieldClass       = "Class"
	FieldBooster     = "Booster Version Category"
)

// SiteSuccess builds the pie chart for a dropdown selection.
//
// For AllSites it counts successful launches per site, one slice per site
// with at least one success, in the table's site order. For a specific site
// it counts that site's launches per outcome class, one slice per class
// present, labelled "0" or "1" in ascending order. A selection matching no
// record yields an empty slice list.
func SiteSuccess(t *launch.Table, site string) PieFigure {
	fig := PieFigure{Kind: KindPie, Slices: make([]Slice, 0)}

	if site == launch.AllSites {
		fig.Title = TitleAllSites
		counts := make(map[string]int)
		for _, r := range t.Select(launch.Succeeded()) {
			counts[r.Site]++
		}
		for _, s := range t.Sites() {
			if n := counts[s]; n > 0 {
				fig.Slices = append(fig.Slices, Slice{Label: s, Value: n})
			}
		}
		return fig
	}

	fig.Title = titleSitePrefix + site
	counts := make(map[launch.Outcome]int)
	for _, r := range t.Select(launch.SiteIs(site)) {
		counts[r.Class]++
	}
	classes := make([]launch.Outcome, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	for _, c := range classes {
		fig.Slices = append(fig.Slices, Slice{Label: c.String(), Value: counts[c]})
	}
	return fig
}

// PayloadSuccess builds the scatter chart for a dropdown selection and a
// payload interval. Every record within rng (inclusive) and, unless site is
// AllSites, launched from site becomes one point. The title is the selection
// value verbatim.
func PayloadSuccess(t *launch.Table, site string, rng launch.PayloadRange) ScatterFigure {
	fig := ScatterFigure{
		Kind:       KindScatter,
		Title:      site,
		XField:     FieldPayloadMass,
		YField:     FieldClass,
		ColorField: FieldBooster,
		Categories: make([]string, 0),
		Points:     make([]Point, 0),
	}

	seen := make(map[string]struct{})
	for _, r := range t.Select(launch.PayloadWithin(rng), launch.ForSite(site)) {
		fig.Points = append(fig.Points, Point{
			X:     r.PayloadMass,
			Y:     int(r.Class),
			Color: r.BoosterVersion,
			Hover: r.Site,
		})
		if _, ok := seen[r.BoosterVersion]; !ok {
			seen[r.BoosterVersion] = struct{}{}
			fig.Categories = append(fig.Categories, r.BoosterVersion)
		}
	}
	return fig
}

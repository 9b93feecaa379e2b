package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transitcal/pkg/calendar"
	"github.com/matzehuels/transitcal/pkg/feed"
	"github.com/matzehuels/transitcal/pkg/pipeline"
)

// displayDate is the date layout of human-readable output.
const displayDate = "2006-01-02 Mon"

// queryFlags holds the flags shared by every calendar command.
type queryFlags struct {
	view    string
	graph   string
	noCache bool
	json    bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.view, "view", "", "view file (TOML or YAML) filtering the feed")
	cmd.Flags().StringVar(&f.graph, "graph", "", "JSON dependency graph replacing the built-in one")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.json, "json", false, "print results as JSON")
}

// resolve runs the pipeline for the feed at path.
func (c *CLI) resolve(cmd *cobra.Command, path string, flags *queryFlags) (*pipeline.Result, error) {
	view, err := loadView(flags.view)
	if err != nil {
		return nil, err
	}
	graph, err := loadGraph(flags.graph)
	if err != nil {
		return nil, err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Resolve(cmd.Context(), pipeline.Options{Path: path, View: view, Graph: graph})
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Resolved %d dates", len(res.ServiceIDs)))
	return res, nil
}

// calendarCommand builds a calendar command that resolves the feed named by
// its single argument and hands the result to show.
func (c *CLI) calendarCommand(use, short string, show func(w io.Writer, res *pipeline.Result, asJSON bool) error) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   use + " <feed>",
		Short: short,
		Long: short + `.

<feed> is a GTFS directory or zip archive. With --view, the feed is
narrowed by the filters in the view file before resolution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.resolve(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return show(cmd.OutOrStdout(), res, flags.json)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) serviceIDsCommand() *cobra.Command {
	return c.calendarCommand("service-ids", "Print the service ids active on each date", showServiceIDs)
}

func (c *CLI) datesCommand() *cobra.Command {
	return c.calendarCommand("dates", "Print dates grouped by identical service", showDates)
}

func (c *CLI) tripCountsCommand() *cobra.Command {
	return c.calendarCommand("trip-counts", "Print the number of scheduled trips per date", showTripCounts)
}

func (c *CLI) busiestDateCommand() *cobra.Command {
	return c.calendarCommand("busiest-date", "Print the date with the most scheduled trips", showBusiestDate)
}

func (c *CLI) busiestWeekCommand() *cobra.Command {
	return c.calendarCommand("busiest-week", "Print the ISO week with the most scheduled trips", showBusiestWeek)
}

// =============================================================================
// Output
// =============================================================================

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func showServiceIDs(w io.Writer, res *pipeline.Result, asJSON bool) error {
	if asJSON {
		return writeJSON(w, res.ServiceIDs)
	}
	for _, d := range res.ServiceIDs.Dates() {
		printKeyValue(w, d.Format(displayDate), res.ServiceIDs[d].String())
	}
	printStats(w, len(res.ServiceIDs), 0, res.CacheInfo.Hit)
	return nil
}

type serviceGroup struct {
	ServiceIDs []string `json:"service_ids"`
	Dates      []string `json:"dates"`
}

func showDates(w io.Writer, res *pipeline.Result, asJSON bool) error {
	groups := calendar.GroupByService(res.ServiceIDs)
	if asJSON {
		out := make([]serviceGroup, 0, len(groups))
		for _, s := range groups.Services() {
			out = append(out, serviceGroup{ServiceIDs: s.IDs(), Dates: formatDates(groups[s])})
		}
		return writeJSON(w, out)
	}
	for _, s := range groups.Services() {
		dates := groups[s]
		fmt.Fprintln(w, StyleTitle.Render(s.String()))
		printDetail(w, "%d dates, %s to %s", len(dates),
			dates[0].Format(displayDate), dates[len(dates)-1].Format(displayDate))
	}
	printStats(w, len(res.ServiceIDs), 0, res.CacheInfo.Hit)
	return nil
}

func showTripCounts(w io.Writer, res *pipeline.Result, asJSON bool) error {
	if asJSON {
		return writeJSON(w, res.Counts)
	}
	for _, d := range res.Counts.Dates() {
		printKeyValue(w, d.Format(displayDate), StyleNumber.Render(fmt.Sprint(res.Counts[d])))
	}
	printStats(w, len(res.Counts), calendar.Total(res.ServiceIDs, res.Counts), res.CacheInfo.Hit)
	return nil
}

type busiestDate struct {
	Date       string   `json:"date"`
	ServiceIDs []string `json:"service_ids"`
	Trips      int      `json:"trips"`
}

func showBusiestDate(w io.Writer, res *pipeline.Result, asJSON bool) error {
	d, s, err := calendar.BusiestDate(res.ServiceIDs, res.Counts)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, busiestDate{Date: feed.FormatDate(d), ServiceIDs: s.IDs(), Trips: res.Counts[d]})
	}
	printKeyValue(w, "date", d.Format(displayDate))
	printKeyValue(w, "services", s.String())
	printKeyValue(w, "trips", fmt.Sprint(res.Counts[d]))
	return nil
}

type busiestWeek struct {
	Year       int                       `json:"year"`
	Week       int                       `json:"week"`
	ServiceIDs calendar.ServiceIDsByDate `json:"service_ids"`
	Trips      int                       `json:"trips"`
}

func showBusiestWeek(w io.Writer, res *pipeline.Result, asJSON bool) error {
	week, err := calendar.BusiestWeek(res.ServiceIDs, res.Counts)
	if err != nil {
		return err
	}
	dates := week.Dates()
	iso := calendar.WeekOf(dates[0])
	total := calendar.Total(week, res.Counts)
	if asJSON {
		return writeJSON(w, busiestWeek{Year: iso.Year, Week: iso.Week, ServiceIDs: week, Trips: total})
	}
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Week %d of %d", iso.Week, iso.Year)))
	for _, d := range dates {
		printKeyValue(w, d.Format(displayDate), fmt.Sprintf("%s  %d trips", week[d], res.Counts[d]))
	}
	printKeyValue(w, "total", fmt.Sprint(total))
	return nil
}

func formatDates(ds []time.Time) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = feed.FormatDate(d)
	}
	return out
}

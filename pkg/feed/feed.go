package feed

import (
	"os"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
)

// Feed is a loaded, filtered and converted view of a transit schedule.
//
// A Feed loaded from an archive owns a private staging directory. Call Close
// when done to remove it; an unreachable, unclosed Feed removes it on a
// best-effort basis at some later garbage collection. A Feed is not safe for
// concurrent use.
type Feed struct {
	view    *FilteredView
	path    string
	root    string
	staging string

	closeOnce sync.Once
	closeErr  error
	cleanup   runtime.Cleanup
	logger    *log.Logger
}

func newFeed(view *FilteredView, path, root, staging string, logger *log.Logger) *Feed {
	f := &Feed{view: view, path: path, root: root, staging: staging, logger: logger}
	if staging != "" {
		f.cleanup = runtime.AddCleanup(f, removeStaging, staging)
	}
	return f
}

func removeStaging(dir string) { _ = os.RemoveAll(dir) }

// Table returns the rows of name visible through the feed's view stack.
// Unknown or missing tables are empty.
func (f *Feed) Table(name string) (*Table, error) { return f.view.Table(name) }

// Trips returns trips.txt.
func (f *Feed) Trips() (*Table, error) { return f.Table(TableTrips) }

// Calendar returns calendar.txt.
func (f *Feed) Calendar() (*Table, error) { return f.Table(TableCalendar) }

// CalendarDates returns calendar_dates.txt.
func (f *Feed) CalendarDates() (*Table, error) { return f.Table(TableCalendarDates) }

// Routes returns routes.txt.
func (f *Feed) Routes() (*Table, error) { return f.Table(TableRoutes) }

// StopTimes returns stop_times.txt.
func (f *Feed) StopTimes() (*Table, error) { return f.Table(TableStopTimes) }

// Stops returns stops.txt.
func (f *Feed) Stops() (*Table, error) { return f.Table(TableStops) }

// Path returns the path the feed was loaded from.
func (f *Feed) Path() string { return f.path }

// Dir returns the directory tables are read from. For archives this is
// inside the staging directory and disappears on Close.
func (f *Feed) Dir() string { return f.root }

// Close removes the staging directory, if any. It is safe to call more than
// once; later calls return the first result.
func (f *Feed) Close() error {
	f.closeOnce.Do(func() {
		if f.staging == "" {
			return
		}
		f.cleanup.Stop()
		f.closeErr = os.RemoveAll(f.staging)
		f.logger.Debug("removed staging directory", "dir", f.staging)
	})
	return f.closeErr
}

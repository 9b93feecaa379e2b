// Package feedtest builds small GTFS feeds on disk for tests.
package feedtest

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Files maps table file names to their CSV content.
type Files map[string]string

// WithFile returns a copy of f with name set to content.
func (f Files) WithFile(name, content string) Files {
	out := make(Files, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[name] = content
	return out
}

// Without returns a copy of f without the named tables.
func (f Files) Without(names ...string) Files {
	out := make(Files, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}

// WriteDir writes files into a fresh temporary directory and returns it.
func WriteDir(t testing.TB, files Files) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// WriteZip writes files into a zip archive inside a temporary directory and
// returns the archive path. A non-empty prefix nests every entry under it.
func WriteZip(t testing.TB, files Files, prefix string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gtfs.zip")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	w := zip.NewWriter(out)
	for name, content := range files {
		f, err := w.Create(prefix + name)
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func lines(rows ...string) string { return strings.Join(rows, "\n") + "\n" }

// Minimal is the two-service calendar fixture: "WD" runs Monday to Friday
// from 2020-01-01 to 2020-01-10, "HOL" is added and "WD" removed on
// 2020-01-01. Three trips run on WD and one on HOL.
func Minimal() Files {
	return Files{
		"calendar.txt": lines(
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"WD,1,1,1,1,1,0,0,20200101,20200110",
		),
		"calendar_dates.txt": lines(
			"service_id,date,exception_type",
			"HOL,20200101,1",
			"WD,20200101,2",
		),
		"trips.txt": lines(
			"route_id,service_id,trip_id",
			"A,WD,t1",
			"A,WD,t2",
			"B,WD,t3",
			"B,HOL,t4",
		),
	}
}

// Sample is a small multi-table feed. Route A (agency AG1) runs trips t1 and
// t2 on WD, route B runs t3 on WD and t4 on HOL, route R (agency AG2) runs t5
// on weekends. Service UNUSED is referenced by no trip and stop S5 by no
// stop time.
func Sample() Files {
	return Files{
		"agency.txt": lines(
			"agency_id,agency_name",
			"AG1,Metro",
			"AG2,Rail",
		),
		"routes.txt": lines(
			"route_id,agency_id,route_type",
			"A,AG1,3",
			"B,AG1,3",
			"R,AG2,2",
		),
		"calendar.txt": lines(
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"WD,1,1,1,1,1,0,0,20200101,20200110",
			"WE,0,0,0,0,0,1,1,20200101,20200110",
			"UNUSED,1,1,1,1,1,1,1,20200101,20200110",
		),
		"calendar_dates.txt": lines(
			"service_id,date,exception_type",
			"HOL,20200101,1",
			"WD,20200101,2",
		),
		"trips.txt": lines(
			"route_id,service_id,trip_id",
			"A,WD,t1",
			"A,WD,t2",
			"B,WD,t3",
			"B,HOL,t4",
			"R,WE,t5",
		),
		"stop_times.txt": lines(
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"t1,08:00:00,08:00:00,S1,1",
			"t1,08:10:00,08:10:00,S2,2",
			"t3,09:00:00,09:00:00,S2,1",
			"t3,25:10:00,25:10:00,S3,2",
			"t5,10:00:00,10:00:00,S4,1",
		),
		"stops.txt": lines(
			"stop_id,stop_name,stop_lat,stop_lon",
			"S1,One,52.5,13.4",
			"S2,Two,52.6,13.5",
			"S3,Three,52.7,13.6",
			"S4,Four,52.8,13.7",
			"S5,Orphan,52.9,13.8",
		),
	}
}

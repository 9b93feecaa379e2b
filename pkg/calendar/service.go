package calendar

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/transitcal/pkg/feed"
)

// sep joins service ids in a Service key. GTFS ids never contain NUL.
const sep = "\x00"

// Service is an immutable set of service ids active together on a date.
// Two Services are == exactly when they hold the same ids, so Service can be
// used as a map key. The zero value is the empty set.
type Service struct {
	key string
	n   int
}

// NewService builds a Service from ids. Duplicates are dropped.
func NewService(ids ...string) Service {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return Service{key: strings.Join(sorted, sep), n: len(sorted)}
}

// IDs returns the service ids in ascending order.
func (s Service) IDs() []string {
	if s.n == 0 {
		return nil
	}
	return strings.Split(s.key, sep)
}

// Contains reports whether id is in the set.
func (s Service) Contains(id string) bool {
	_, found := slices.BinarySearch(s.IDs(), id)
	return found
}

// Len returns the number of ids.
func (s Service) Len() int { return s.n }

// Empty reports whether the set has no ids.
func (s Service) Empty() bool { return s.n == 0 }

// String renders the ids as "{A, B}".
func (s Service) String() string {
	return "{" + strings.Join(s.IDs(), ", ") + "}"
}

// MarshalJSON encodes the ids as a sorted array.
func (s Service) MarshalJSON() ([]byte, error) {
	ids := s.IDs()
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON decodes an array of ids.
func (s *Service) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewService(ids...)
	return nil
}

// ServiceIDsByDate maps each date with service to its active Service. Dates
// without service are absent; no value is empty.
type ServiceIDsByDate map[time.Time]Service

// Dates returns the dates in ascending order.
func (m ServiceIDsByDate) Dates() []time.Time {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

// MarshalJSON encodes the map keyed by YYYYMMDD dates.
func (m ServiceIDsByDate) MarshalJSON() ([]byte, error) {
	out := make(map[string]Service, len(m))
	for d, s := range m {
		out[feed.FormatDate(d)] = s
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a map keyed by YYYYMMDD dates.
func (m *ServiceIDsByDate) UnmarshalJSON(data []byte) error {
	var raw map[string]Service
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ServiceIDsByDate, len(raw))
	for k, s := range raw {
		d, err := feed.ParseDate(k)
		if err != nil {
			return err
		}
		out[d] = s
	}
	*m = out
	return nil
}

// DatesByService groups dates by identical Service. Dates are ascending.
type DatesByService map[Service][]time.Time

// Services returns the keys ordered by their earliest date.
func (m DatesByService) Services() []Service {
	out := make([]Service, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Service) int {
		if c := m[a][0].Compare(m[b][0]); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})
	return out
}

// CountsByDate maps dates to their number of scheduled trips.
type CountsByDate map[time.Time]int

// Dates returns the dates in ascending order.
func (m CountsByDate) Dates() []time.Time {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

// MarshalJSON encodes the map keyed by YYYYMMDD dates.
func (m CountsByDate) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(m))
	for d, n := range m {
		out[feed.FormatDate(d)] = n
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a map keyed by YYYYMMDD dates.
func (m *CountsByDate) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(CountsByDate, len(raw))
	for k, n := range raw {
		d, err := feed.ParseDate(k)
		if err != nil {
			return err
		}
		out[d] = n
	}
	*m = out
	return nil
}

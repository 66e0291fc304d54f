package trainer

import (
	"errors"
	"sort"
	"strings"
	"time"

	"frontdesk/internal/calendar"
)

var (
	ErrInvalidTrainer          = errors.New("trainer requires an id and a name")
	ErrInvalidAvailability     = errors.New("availability window must start before it ends")
	ErrOverlappingAvailability = errors.New("availability windows overlap on the same weekday")
)

// Window is a recurring weekly slot when the trainer can teach.
type Window struct {
	Weekday  time.Weekday      `json:"weekday"`
	Interval calendar.Interval `json:"interval"`
}

type Trainer struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Specialties     []string  `json:"specialties"`
	Availability    []Window  `json:"availability"`
	AssignedClasses []string  `json:"assigned_classes"`
	AssignedMembers []string  `json:"assigned_members"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (t *Trainer) Validate() error {
	if t.ID == "" || strings.TrimSpace(t.FirstName+t.LastName) == "" {
		return ErrInvalidTrainer
	}
	byDay := make(map[time.Weekday][]calendar.Interval)
	for _, w := range t.Availability {
		if !w.Interval.Valid() || w.Weekday < time.Sunday || w.Weekday > time.Saturday {
			return ErrInvalidAvailability
		}
		for _, other := range byDay[w.Weekday] {
			if other.Overlaps(w.Interval) {
				return ErrOverlappingAvailability
			}
		}
		byDay[w.Weekday] = append(byDay[w.Weekday], w.Interval)
	}
	return nil
}

func (t *Trainer) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// Covers reports whether a single availability window on date's weekday
// contains the whole interval.
func (t *Trainer) Covers(date calendar.Date, in calendar.Interval) bool {
	day := date.Weekday()
	for _, w := range t.Availability {
		if w.Weekday == day && w.Interval.Contains(in) {
			return true
		}
	}
	return false
}

func (t *Trainer) AssignClass(classID string) bool {
	for _, id := range t.AssignedClasses {
		if id == classID {
			return false
		}
	}
	t.AssignedClasses = append(t.AssignedClasses, classID)
	return true
}

func (t *Trainer) UnassignClass(classID string) bool {
	for i, id := range t.AssignedClasses {
		if id == classID {
			t.AssignedClasses = append(t.AssignedClasses[:i], t.AssignedClasses[i+1:]...)
			return true
		}
	}
	return false
}

// SortAvailability orders windows by weekday then start time.
func (t *Trainer) SortAvailability() {
	sort.Slice(t.Availability, func(i, j int) bool {
		a, b := t.Availability[i], t.Availability[j]
		if a.Weekday != b.Weekday {
			return a.Weekday < b.Weekday
		}
		return a.Interval.Start < b.Interval.Start
	})
}

func (t Trainer) Clone() Trainer {
	cp := t
	cp.Specialties = append([]string{}, t.Specialties...)
	cp.Availability = append([]Window{}, t.Availability...)
	cp.AssignedClasses = append([]string{}, t.AssignedClasses...)
	cp.AssignedMembers = append([]string{}, t.AssignedMembers...)
	return cp
}

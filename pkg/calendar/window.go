package calendar

import (
	"fmt"
	"strings"

	"github.com/erancho/erancho-backend/pkg/config"
)

// Window returns the consecutive days today+offset .. today+offset+count-1.
func Window(today Date, offset, count int) []Date {
	if count <= 0 {
		return []Date{}
	}
	dates := make([]Date, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, today.AddDays(offset+i))
	}
	return dates
}

// WeekdaysOnly drops Saturdays and Sundays, keeping order.
func WeekdaysOnly(dates []Date) []Date {
	out := make([]Date, 0, len(dates))
	for _, d := range dates {
		if !d.IsWeekend() {
			out = append(out, d)
		}
	}
	return out
}

type PolicyName string

const (
	PolicySelf       PolicyName = "self"
	PolicySupervisor PolicyName = "supervisor"
	PolicyReport     PolicyName = "report"
)

// Policy describes which dates a screen may select.
type Policy struct {
	Name            PolicyName `json:"name"`
	Offset          int        `json:"offset"`
	Count           int        `json:"count"`
	ExcludeWeekends bool       `json:"exclude_weekends"`
}

func (p Policy) Dates(today Date) []Date {
	dates := Window(today, p.Offset, p.Count)
	if p.ExcludeWeekends {
		return WeekdaysOnly(dates)
	}
	return dates
}

// Contains reports whether d is selectable under the policy on the given day.
func (p Policy) Contains(today, d Date) bool {
	if d.IsZero() {
		return false
	}
	first := today.AddDays(p.Offset)
	last := today.AddDays(p.Offset + p.Count - 1)
	if p.Count <= 0 || d.Before(first) || d.After(last) {
		return false
	}
	return !p.ExcludeWeekends || !d.IsWeekend()
}

type Policies struct {
	Self       Policy
	Supervisor Policy
	Report     Policy
}

func DefaultPolicies() Policies {
	return PoliciesFromConfig(config.WindowsConfig{
		SelfOffset:       7,
		SelfCount:        20,
		SupervisorOffset: 1,
		SupervisorCount:  15,
		ReportOffset:     0,
		ReportCount:      30,
	})
}

func PoliciesFromConfig(cfg config.WindowsConfig) Policies {
	return Policies{
		Self:       Policy{Name: PolicySelf, Offset: cfg.SelfOffset, Count: cfg.SelfCount, ExcludeWeekends: true},
		Supervisor: Policy{Name: PolicySupervisor, Offset: cfg.SupervisorOffset, Count: cfg.SupervisorCount},
		Report:     Policy{Name: PolicyReport, Offset: cfg.ReportOffset, Count: cfg.ReportCount},
	}
}

func (p Policies) Lookup(name string) (Policy, error) {
	switch PolicyName(strings.ToLower(strings.TrimSpace(name))) {
	case PolicySelf:
		return p.Self, nil
	case PolicySupervisor:
		return p.Supervisor, nil
	case PolicyReport:
		return p.Report, nil
	default:
		return Policy{}, fmt.Errorf("unknown window policy %q", name)
	}
}

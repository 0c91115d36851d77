package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erancho/erancho-backend/internal/sectors"
	"github.com/erancho/erancho-backend/pkg/enums"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed default_roster.yaml
var defaultRoster []byte

// Roster is the initial directory loaded into an empty store.
type Roster struct {
	Sectors      []string           `yaml:"sectors"`
	People       []PersonEntry      `yaml:"people"`
	Reservations []ReservationEntry `yaml:"reservations"`
}

// PersonEntry references its sector by name. An empty sector leaves the person unassigned.
type PersonEntry struct {
	CPF     string `yaml:"cpf"`
	Name    string `yaml:"name"`
	WarName string `yaml:"war_name"`
	Rank    string `yaml:"rank"`
	Sector  string `yaml:"sector"`
	Role    string `yaml:"role"`
	Status  string `yaml:"status"`
	Pin     string `yaml:"pin"`
}

// ReservationEntry books a meal relative to the day the seed runs.
type ReservationEntry struct {
	CPF       string `yaml:"cpf"`
	DaysAhead int    `yaml:"days_ahead"`
}

// Default returns the built-in roster.
func Default() (*Roster, error) {
	return Parse(bytes.NewReader(defaultRoster))
}

// Load reads a roster file. An empty path yields the built-in roster.
func Load(path string) (*Roster, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed roster: %w", err)
	}
	defer f.Close()
	roster, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return roster, nil
}

// Parse decodes and validates a roster. Unknown keys are rejected.
func Parse(r io.Reader) (*Roster, error) {
	var roster Roster
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&roster); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed roster: %w", err)
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return &roster, nil
}

// Validate reports every problem in the roster at once.
func (r *Roster) Validate() error {
	var errs error
	known := map[string]struct{}{}
	for i, name := range r.Sectors {
		key := sectors.NameKey(name)
		if key == "" {
			errs = multierr.Append(errs, fmt.Errorf("sectors[%d]: name is required", i))
			continue
		}
		if _, dup := known[key]; dup {
			errs = multierr.Append(errs, fmt.Errorf("sectors[%d]: duplicate sector %q", i, name))
		}
		known[key] = struct{}{}
	}

	people := map[string]struct{}{}
	for i, p := range r.People {
		cpf := strings.TrimSpace(p.CPF)
		if cpf == "" {
			errs = multierr.Append(errs, fmt.Errorf("people[%d]: cpf is required", i))
		} else if _, dup := people[cpf]; dup {
			errs = multierr.Append(errs, fmt.Errorf("people[%d]: duplicate cpf %q", i, cpf))
		}
		people[cpf] = struct{}{}
		if strings.TrimSpace(p.Name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("people[%d]: name is required", i))
		}
		if p.Pin == "" {
			errs = multierr.Append(errs, fmt.Errorf("people[%d]: pin is required", i))
		}
		if _, err := p.role(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("people[%d]: %w", i, err))
		}
		if _, err := p.status(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("people[%d]: %w", i, err))
		}
		if s := sectors.NameKey(p.Sector); s != "" {
			if _, ok := known[s]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("people[%d]: unknown sector %q", i, p.Sector))
			}
		}
	}

	for i, res := range r.Reservations {
		if _, ok := people[strings.TrimSpace(res.CPF)]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("reservations[%d]: unknown person %q", i, res.CPF))
		}
		if res.DaysAhead < 0 {
			errs = multierr.Append(errs, fmt.Errorf("reservations[%d]: days_ahead must not be negative", i))
		}
	}
	return errs
}

func (p PersonEntry) role() (enums.Role, error) {
	if strings.TrimSpace(p.Role) == "" {
		return enums.RoleMilitar, nil
	}
	return enums.ParseRole(p.Role)
}

func (p PersonEntry) status() (enums.AccountStatus, error) {
	if strings.TrimSpace(p.Status) == "" {
		return enums.AccountStatusApproved, nil
	}
	return enums.ParseAccountStatus(p.Status)
}

package amenity

import (
	"strings"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
)

// RawRuleSet mirrors the ruleset document as stored. Key names follow the
// stored documents; times are strings in any of the accepted clock formats.
type RawRuleSet struct {
	MaxHorasPorReserva  int `json:"maxHorasPorReserva"`
	MaxReservasPorDia   int `json:"maxReservasPorDia"`
	MaxReservasPorSem   int `json:"maxReservasPorSemana"`
	MaxReservasPorMes   int `json:"maxReservasPorMes"`
	MaxCasasSimultaneas int `json:"maxCasasSimultaneas"`
	MaxInvitados        int `json:"maxInvitados"`

	AntelacionMinima  int `json:"antelacionMinima"`
	AntelacionMaxima  int `json:"antelacionMaxima"`
	CancelacionMinima int `json:"cancelacionMinima"`

	PermiteInvitados           bool `json:"permiteInvitados"`
	RequiereAprobacion         bool `json:"requiereAprobacion"`
	PermiteReservasSimultaneas bool `json:"permiteReservasSimultaneas"`
	RequiereLlave              bool `json:"requiereLlave"`

	Horario                RawSchedule            `json:"horario"`
	DiasDeshabilitados     []string               `json:"diasDeshabilitados"`
	FechasDeshabilitadas   []string               `json:"fechasDeshabilitadas"`
	VentanasDeshabilitadas map[string][]RawWindow `json:"ventanasDeshabilitadas"`
}

type RawSchedule struct {
	EntreSemana RawWindow            `json:"entreSemana"`
	FinDeSemana RawWindow            `json:"finDeSemana"`
	PorDia      map[string]RawWindow `json:"porDia"`
}

type RawWindow struct {
	Apertura string `json:"apertura"`
	Cierre   string `json:"cierre"`
}

var weekdayNames = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
}

// defaultWindow keeps an amenity open all day when no hours are configured.
var defaultWindow = Window{Open: 0, Close: 24 * 60}

// Resolve normalizes a raw ruleset document. Undecodable time strings are a
// data-quality defect: the offending window falls back to the default and the
// decode error is reported alongside the resolved set so operators can act,
// without aborting resolution.
func Resolve(raw RawRuleSet) (RuleSet, []error) {
	var defects []error

	decodeWindow := func(rw RawWindow, fallback Window) Window {
		if rw.Apertura == "" && rw.Cierre == "" {
			return fallback
		}
		open, err := timeofday.Parse(rw.Apertura)
		if err != nil {
			defects = append(defects, err)
			return fallback
		}
		closing, err := timeofday.Parse(rw.Cierre)
		if err != nil {
			defects = append(defects, err)
			return fallback
		}
		if open >= closing {
			return fallback
		}
		return Window{Open: open, Close: closing}
	}

	sched := Schedule{
		Weekday:          decodeWindow(raw.Horario.EntreSemana, defaultWindow),
		Weekend:          decodeWindow(raw.Horario.FinDeSemana, defaultWindow),
		Overrides:        map[time.Weekday]Window{},
		DisabledWeekdays: map[time.Weekday]bool{},
		DisabledDates:    map[string]bool{},
		DisabledWindows:  map[time.Weekday][]Window{},
	}

	for name, rw := range raw.Horario.PorDia {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		fallback := sched.Weekday
		if d == time.Saturday || d == time.Sunday {
			fallback = sched.Weekend
		}
		sched.Overrides[d] = decodeWindow(rw, fallback)
	}

	for _, name := range raw.DiasDeshabilitados {
		if d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; ok {
			sched.DisabledWeekdays[d] = true
		}
	}

	for _, date := range raw.FechasDeshabilitadas {
		if t, err := time.Parse(DateKeyFormat, strings.TrimSpace(date)); err == nil {
			sched.DisabledDates[t.Format(DateKeyFormat)] = true
		}
	}

	for name, windows := range raw.VentanasDeshabilitadas {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		for _, rw := range windows {
			open, err := timeofday.Parse(rw.Apertura)
			if err != nil {
				defects = append(defects, err)
				continue
			}
			closing, err := timeofday.Parse(rw.Cierre)
			if err != nil {
				defects = append(defects, err)
				continue
			}
			sched.DisabledWindows[d] = append(sched.DisabledWindows[d], Window{Open: open, Close: closing})
		}
	}

	rules := RuleSet{
		MaxHoursPerReservation:    clampCap(raw.MaxHorasPorReserva),
		MaxPerDay:                 clampCap(raw.MaxReservasPorDia),
		MaxPerWeek:                clampCap(raw.MaxReservasPorSem),
		MaxPerMonth:               clampCap(raw.MaxReservasPorMes),
		MaxSimultaneousHouseholds: clampCap(raw.MaxCasasSimultaneas),
		MaxGuests:                 clampCap(raw.MaxInvitados),
		MinAdvanceDays:            maxInt(raw.AntelacionMinima, 0),
		MaxAdvanceDays:            clampCap(raw.AntelacionMaxima),
		MinCancelNoticeHours:      maxInt(raw.CancelacionMinima, 0),
		AllowGuests:               raw.PermiteInvitados,
		RequireApproval:           raw.RequiereAprobacion,
		AllowOverlap:              raw.PermiteReservasSimultaneas,
		RequireKey:                raw.RequiereLlave,
		Schedule:                  sched,
	}

	return rules, defects
}

// clampCap treats absent or negative caps as unenforced.
func clampCap(v int) int {
	if v <= 0 {
		return Unlimited
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

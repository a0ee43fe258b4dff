//go:build unit

package amenity_test

import (
	"testing"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/amenity"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(openHour, closeHour int) amenity.Window {
	return amenity.Window{
		Open:  timeofday.Minutes(openHour * 60),
		Close: timeofday.Minutes(closeHour * 60),
	}
}

func TestResolve(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		raw := amenity.RawRuleSet{
			MaxHorasPorReserva:  3,
			MaxReservasPorDia:   1,
			MaxReservasPorSem:   3,
			MaxReservasPorMes:   10,
			MaxCasasSimultaneas: 2,
			MaxInvitados:        15,
			AntelacionMinima:    1,
			AntelacionMaxima:    30,
			CancelacionMinima:   24,
			PermiteInvitados:    true,
			RequiereAprobacion:  true,
			RequiereLlave:       true,
			Horario: amenity.RawSchedule{
				EntreSemana: amenity.RawWindow{Apertura: "08:00", Cierre: "22:00"},
				FinDeSemana: amenity.RawWindow{Apertura: "9:00 AM", Cierre: "11:00 PM"},
				PorDia: map[string]amenity.RawWindow{
					"Miércoles": {Apertura: "10:00", Cierre: "14:00"},
				},
			},
			DiasDeshabilitados:   []string{"lunes"},
			FechasDeshabilitadas: []string{"2026-12-25"},
			VentanasDeshabilitadas: map[string][]amenity.RawWindow{
				"martes": {{Apertura: "13:00", Cierre: "14:00"}},
			},
		}

		rules, defects := amenity.Resolve(raw)
		require.Empty(t, defects)

		assert.Equal(t, 3, rules.MaxHoursPerReservation)
		assert.Equal(t, 180, rules.MaxDurationMinutes())
		assert.Equal(t, 1, rules.MaxPerDay)
		assert.Equal(t, 2, rules.MaxSimultaneousHouseholds)
		assert.True(t, rules.RequireApproval)
		assert.True(t, rules.RequireKey)
		assert.False(t, rules.AllowOverlap)

		assert.Equal(t, window(8, 22), rules.Schedule.HoursFor(time.Friday))
		assert.Equal(t, window(9, 23), rules.Schedule.HoursFor(time.Saturday))
		assert.Equal(t, window(10, 14), rules.Schedule.HoursFor(time.Wednesday))

		assert.True(t, rules.Schedule.IsWeekdayDisabled(time.Monday))
		assert.True(t, rules.Schedule.IsDateDisabled(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)))
		require.Len(t, rules.Schedule.WindowsDisabledFor(time.Tuesday), 1)
	})

	t.Run("empty document keeps everything unenforced", func(t *testing.T) {
		rules, defects := amenity.Resolve(amenity.RawRuleSet{})
		require.Empty(t, defects)

		assert.Equal(t, amenity.Unlimited, rules.MaxPerDay)
		assert.Equal(t, amenity.Unlimited, rules.MaxDurationMinutes())
		assert.Equal(t, window(0, 24), rules.Schedule.HoursFor(time.Monday))
		assert.Equal(t, window(0, 24), rules.Schedule.HoursFor(time.Sunday))
	})

	t.Run("negative caps are unenforced", func(t *testing.T) {
		rules, _ := amenity.Resolve(amenity.RawRuleSet{
			MaxReservasPorDia: -1,
			AntelacionMinima:  -3,
		})
		assert.Equal(t, amenity.Unlimited, rules.MaxPerDay)
		assert.Equal(t, 0, rules.MinAdvanceDays)
	})

	t.Run("undecodable window falls back and reports a defect", func(t *testing.T) {
		rules, defects := amenity.Resolve(amenity.RawRuleSet{
			Horario: amenity.RawSchedule{
				EntreSemana: amenity.RawWindow{Apertura: "temprano", Cierre: "22:00"},
			},
		})

		require.Len(t, defects, 1)
		var decodeErr *timeofday.DecodeError
		require.ErrorAs(t, defects[0], &decodeErr)
		assert.Equal(t, "temprano", decodeErr.Input)

		assert.Equal(t, window(0, 24), rules.Schedule.HoursFor(time.Monday))
	})

	t.Run("inverted window falls back silently", func(t *testing.T) {
		rules, defects := amenity.Resolve(amenity.RawRuleSet{
			Horario: amenity.RawSchedule{
				EntreSemana: amenity.RawWindow{Apertura: "22:00", Cierre: "08:00"},
			},
		})
		require.Empty(t, defects)
		assert.Equal(t, window(0, 24), rules.Schedule.HoursFor(time.Monday))
	})

	t.Run("weekday names tolerate accents and case", func(t *testing.T) {
		rules, _ := amenity.Resolve(amenity.RawRuleSet{
			DiasDeshabilitados: []string{"Sábado", "DOMINGO", "no-es-un-dia"},
		})
		assert.True(t, rules.Schedule.IsWeekdayDisabled(time.Saturday))
		assert.True(t, rules.Schedule.IsWeekdayDisabled(time.Sunday))
	})
}

//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
	"github.com/Gera09az/zentry-web-sub000/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotted(start, end timeofday.Minutes) *reservation.Reservation {
	return builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.Date = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
		b.Start = start
		b.End = end
	}).Build()
}

func TestBuildBlocks(t *testing.T) {
	t.Run("identical ranges group, overlapping ones do not", func(t *testing.T) {
		a := slotted(10*60, 12*60)
		b := slotted(10*60, 12*60)
		overlapping := slotted(11*60, 13*60)

		blocks := reservation.BuildBlocks([]*reservation.Reservation{overlapping, a, b})
		require.Len(t, blocks, 2)

		assert.Equal(t, timeofday.Minutes(10*60), blocks[0].Start)
		assert.Len(t, blocks[0].Reservations, 2)
		assert.Equal(t, timeofday.Minutes(11*60), blocks[1].Start)
		assert.Len(t, blocks[1].Reservations, 1)
	})

	t.Run("sorted by start then end", func(t *testing.T) {
		blocks := reservation.BuildBlocks([]*reservation.Reservation{
			slotted(14*60, 16*60),
			slotted(8*60, 10*60),
			slotted(8*60, 9*60),
		})
		require.Len(t, blocks, 3)
		assert.Equal(t, timeofday.Minutes(8*60), blocks[0].Start)
		assert.Equal(t, timeofday.Minutes(9*60), blocks[0].End)
		assert.Equal(t, timeofday.Minutes(10*60), blocks[1].End)
		assert.Equal(t, timeofday.Minutes(14*60), blocks[2].Start)
	})

	t.Run("every reservation lands in exactly one block", func(t *testing.T) {
		input := []*reservation.Reservation{
			slotted(10*60, 12*60),
			slotted(10*60, 12*60),
			slotted(12*60, 14*60),
		}
		blocks := reservation.BuildBlocks(input)

		var total int
		for _, b := range blocks {
			total += len(b.Reservations)
		}
		assert.Equal(t, len(input), total)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, reservation.BuildBlocks(nil))
	})
}

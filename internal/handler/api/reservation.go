package api

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	reqdto "github.com/Gera09az/zentry-web-sub000/internal/handler/dto/request"
	resdto "github.com/Gera09az/zentry-web-sub000/internal/handler/dto/response"
	"github.com/Gera09az/zentry-web-sub000/internal/handler/middleware"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
	"github.com/Gera09az/zentry-web-sub000/internal/usecase/commands"
	"github.com/Gera09az/zentry-web-sub000/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	commands commands.ReservationCommands
	queries  queries.ReservationQueries
	location *time.Location
}

func NewReservationHandler(cmds commands.ReservationCommands, qrys queries.ReservationQueries, location *time.Location) *ReservationHandler {
	return &ReservationHandler{
		commands: cmds,
		queries:  qrys,
		location: location,
	}
}

// @Summary Evaluate reservation candidate
// @Description Run the admissibility rules for a candidate reservation without persisting anything
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param communityId path string true "Community ID"
// @Param request body reqdto.EvaluateReservationRequest true "Candidate reservation"
// @Success 200 {object} resdto.EvaluateResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /communities/{communityId}/reservations/evaluate [post]
func (h *ReservationHandler) Evaluate(c *gin.Context) {
	communityID := c.Param("communityId")

	var req reqdto.EvaluateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	cmd, err := req.ToCommand(h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	decision, err := h.commands.Evaluate(c.Request.Context(), communityID, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromDecision(decision))
}

// @Summary Transition reservation status
// @Description Move a reservation through its lifecycle (approve, reject, start, finalize, cancel)
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param communityId path string true "Community ID"
// @Param id path string true "Reservation ID"
// @Param request body reqdto.TransitionRequest true "Target status"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /communities/{communityId}/reservations/{id}/status [post]
func (h *ReservationHandler) Transition(c *gin.Context) {
	communityID := c.Param("communityId")

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := h.reservationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	var req reqdto.TransitionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	target, err := req.ToStatus()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	result, err := h.commands.Transition(c.Request.Context(), communityID, id, target, actor, req.GetReason())
	if err != nil && !errors.Is(err, errs.ErrPartialWrite) {
		h.respondError(c, err)
		return
	}

	// a partial write is still an applied transition; 409 plus the flag in
	// the body marks it for reconciliation
	c.JSON(transitionStatus(err), resdto.FromTransitionResult(result))
}

// @Summary Set key handover status
// @Description Record an on-site key custody action (deliver, receive, revert)
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param communityId path string true "Community ID"
// @Param id path string true "Reservation ID"
// @Param request body reqdto.KeyStatusRequest true "Target key status"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /communities/{communityId}/reservations/{id}/key [post]
func (h *ReservationHandler) SetKeyStatus(c *gin.Context) {
	communityID := c.Param("communityId")

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := h.reservationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	var req reqdto.KeyStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	target, err := req.ToStatus()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	result, err := h.commands.SetKeyStatus(c.Request.Context(), communityID, id, target, actor)
	if err != nil && !errors.Is(err, errs.ErrPartialWrite) {
		h.respondError(c, err)
		return
	}

	c.JSON(transitionStatus(err), resdto.FromTransitionResult(result))
}

// @Summary Remove reservation
// @Description Administrative removal deleting both denormalized copies
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param communityId path string true "Community ID"
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /communities/{communityId}/reservations/{id} [delete]
func (h *ReservationHandler) Remove(c *gin.Context) {
	communityID := c.Param("communityId")

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := h.reservationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	if err := h.commands.Remove(c.Request.Context(), communityID, id, actor); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get reservation
// @Description Get one reservation view from the merged working set
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param communityId path string true "Community ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} queries.ReservationView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /communities/{communityId}/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	communityID := c.Param("communityId")

	id, err := h.reservationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), communityID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Access status
// @Description Derived display status of a reservation at the current instant
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param communityId path string true "Community ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.AccessStatusResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /communities/{communityId}/reservations/{id}/access [get]
func (h *ReservationHandler) AccessStatus(c *gin.Context) {
	communityID := c.Param("communityId")

	id, err := h.reservationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	status, err := h.queries.AccessStatus(c.Request.Context(), communityID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.AccessStatusResponse{AccessStatus: string(status)})
}

// @Summary Day blocks
// @Description Reservations of one amenity for a day, partitioned into display blocks
// @Tags amenities
// @Produce json
// @Security BearerAuth
// @Param communityId path string true "Community ID"
// @Param amenityId path string true "Amenity ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {array} queries.BlockView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /communities/{communityId}/amenities/{amenityId}/blocks [get]
func (h *ReservationHandler) DayBlocks(c *gin.Context) {
	communityID := c.Param("communityId")

	amenityID, err := uuid.Parse(c.Param("amenityId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid amenity ID format",
		})
		return
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": reqdto.ErrInvalidDate.Error(),
		})
		return
	}

	blocks, err := h.queries.DayBlocks(c.Request.Context(), communityID, amenityID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, blocks)
}

// @Summary Export reservations
// @Description Stream a community's reservations as CSV
// @Tags reservations
// @Produce text/csv
// @Security BearerAuth
// @Param communityId path string true "Community ID"
// @Success 200 {string} string "CSV body"
// @Failure 401 {object} map[string]string
// @Router /communities/{communityId}/reservations/export [get]
func (h *ReservationHandler) Export(c *gin.Context) {
	communityID := c.Param("communityId")

	rows, err := h.queries.ExportRows(c.Request.Context(), communityID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="reservations.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if werr := w.Write(queries.ExportHeader); werr != nil {
		return
	}
	for _, row := range rows {
		if werr := w.Write(row.Record()); werr != nil {
			return
		}
	}
	w.Flush()
}

func (h *ReservationHandler) reservationID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func transitionStatus(err error) int {
	if errors.Is(err, errs.ErrPartialWrite) {
		return http.StatusConflict
	}
	return http.StatusOK
}

func (h *ReservationHandler) respondError(c *gin.Context, err error) {
	var decodeErr *timeofday.DecodeError

	switch {
	case errors.Is(err, errs.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reservation not found",
		})
	case errors.Is(err, errs.ErrAmenityNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Amenity not found",
		})
	case errors.Is(err, reservation.ErrInvalidTransition),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, keyhandover.ErrInvalidKeyTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, reservation.ErrCancelDeadlinePassed):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cancellation deadline passed",
		})
	case errors.Is(err, reservation.ErrRejectionNeedsReason):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Rejection requires a reason",
		})
	case errors.Is(err, commands.ErrNoKeyRecord):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Reservation has no key handover record",
		})
	case errors.Is(err, reservation.ErrInvalidSlot),
		errors.Is(err, reservation.ErrSlotOutOfDay),
		errors.Is(err, reservation.ErrSlotTooLong),
		errors.Is(err, reservation.ErrIncompleteHousehold):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
	case errors.As(err, &decodeErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": decodeErr.Error(),
		})
	default:
		slog.Error("request failed",
			"path", c.Request.URL.Path,
			"error", err,
			"stack", errs.ExtractStackLines(err, 8))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

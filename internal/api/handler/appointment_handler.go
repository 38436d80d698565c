package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Appointment is a booked slot at the university medical centre.
type Appointment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DoctorName  string    `json:"doctor_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason"`
	BookedAt    time.Time `json:"booked_at"`
}

type bookAppointmentRequest struct {
	DoctorName  string    `json:"doctor_name"  validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Reason      string    `json:"reason"       validate:"required,min=3"`
}

// AppointmentHandler serves the booking screens. Bookings live in process
// memory; the medical centre's scheduling backend is out of scope.
type AppointmentHandler struct {
	sessions SessionViewer

	mu           sync.Mutex
	appointments []Appointment
}

func NewAppointmentHandler(sessions SessionViewer) *AppointmentHandler {
	return &AppointmentHandler{sessions: sessions}
}

// List serves GET /appointments: the signed-in user's bookings.
//
// @Summary      List my appointments
// @Tags         appointments
// @Produce      json
// @Success      200  {array}   Appointment
// @Failure      403  {object}  errorResponse
// @Router       /appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	user := h.sessions.Current().User

	h.mu.Lock()
	defer h.mu.Unlock()
	mine := make([]Appointment, 0)
	for _, a := range h.appointments {
		if a.UserID == user.ID {
			mine = append(mine, a)
		}
	}
	return c.JSON(http.StatusOK, mine)
}

// Book serves POST /appointments.
//
// @Summary      Book an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        body  body      bookAppointmentRequest  true  "Slot to book"
// @Success      201   {object}  Appointment
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /appointments [post]
func (h *AppointmentHandler) Book(c echo.Context) error {
	var req bookAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user := h.sessions.Current().User
	appt := Appointment{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		DoctorName:  req.DoctorName,
		ScheduledAt: req.ScheduledAt,
		Reason:      req.Reason,
		BookedAt:    time.Now().UTC(),
	}

	h.mu.Lock()
	h.appointments = append(h.appointments, appt)
	h.mu.Unlock()

	return c.JSON(http.StatusCreated, appt)
}

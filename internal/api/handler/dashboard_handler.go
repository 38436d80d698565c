package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
)

// SessionViewer gives dashboards read access to the signed-in user. Guards
// run before these handlers, so User is never nil here.
type SessionViewer interface {
	Current() domain.Session
}

// DashboardHandler serves the role-aware dashboard view models.
type DashboardHandler struct {
	sessions SessionViewer
}

func NewDashboardHandler(sessions SessionViewer) *DashboardHandler {
	return &DashboardHandler{sessions: sessions}
}

type dashboardResponse struct {
	Role    string       `json:"role"`
	User    *domain.User `json:"user"`
	Widgets []string     `json:"widgets"`
}

// Student serves GET /dashboard/student.
//
// @Summary      Student dashboard
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /dashboard/student [get]
func (h *DashboardHandler) Student(c echo.Context) error {
	return h.render(c, domain.RoleStudent, []string{
		"upcoming_appointments", "medical_records", "health_tips",
	})
}

// Staff serves GET /dashboard/staff.
//
// @Summary      Staff dashboard
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /dashboard/staff [get]
func (h *DashboardHandler) Staff(c echo.Context) error {
	return h.render(c, domain.RoleStaff, []string{
		"upcoming_appointments", "dependent_records", "announcements",
	})
}

// Doctor serves GET /dashboard/doctor.
//
// @Summary      Doctor dashboard
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /dashboard/doctor [get]
func (h *DashboardHandler) Doctor(c echo.Context) error {
	return h.render(c, domain.RoleDoctor, []string{
		"todays_schedule", "patient_queue", "prescriptions",
	})
}

// Admin serves GET /dashboard/admin.
//
// @Summary      Admin dashboard
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /dashboard/admin [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	return h.render(c, domain.RoleAdmin, []string{
		"user_management", "appointment_overview", "system_reports",
	})
}

func (h *DashboardHandler) render(c echo.Context, role domain.Role, widgets []string) error {
	session := h.sessions.Current()
	return c.JSON(http.StatusOK, dashboardResponse{
		Role:    string(role),
		User:    session.User,
		Widgets: widgets,
	})
}

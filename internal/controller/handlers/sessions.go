package handlers

import (
	"context"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gofiber/fiber/v2"
)

// BookSession POST /api/book-session
func (h *Handlers) BookSession(c *fiber.Ctx) error {
	var req BookSessionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	date, err := model.ParseDate(req.SessionDate)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid session date")
	}
	start, err := model.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid start time")
	}
	end, err := model.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid end time")
	}

	session, err := h.sessions.Book(c.UserContext(), service.BookRequest{
		StudentAccountID: req.StudentUserID,
		TeacherAccountID: req.TeacherUserID,
		SubjectID:        req.SubjectID,
		SubjectName:      strings.TrimSpace(req.SubjectName),
		Date:             date,
		Start:            start,
		End:              end,
	})
	if err != nil {
		return h.fail(c, err, msgBookFailed)
	}

	return respondOK(c, fiber.Map{
		"message":   "Session booked successfully",
		"sessionId": session.ID,
	})
}

// AcceptSession PUT /api/sessions/:sessionId/accept
func (h *Handlers) AcceptSession(c *fiber.Ctx) error {
	return h.teacherAction(c, h.sessions.Accept, "Session accepted", msgAcceptFailed)
}

// CompleteSession PUT /api/sessions/:sessionId/complete
func (h *Handlers) CompleteSession(c *fiber.Ctx) error {
	return h.teacherAction(c, h.sessions.Complete, "Session completed", msgCompleteFailed)
}

type teacherActionFunc func(ctx context.Context, sessionID, teacherAccountID int64) error

func (h *Handlers) teacherAction(c *fiber.Ctx, action teacherActionFunc, success, fallback string) error {
	sessionID, ok := idParam(c, "sessionId")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	var req TeacherActionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	if err := action(c.UserContext(), sessionID, req.TeacherUserID); err != nil {
		return h.fail(c, err, fallback)
	}

	return respondOK(c, fiber.Map{"message": success})
}

// CancelSession DELETE /api/sessions/:sessionId
func (h *Handlers) CancelSession(c *fiber.Ctx) error {
	sessionID, ok := idParam(c, "sessionId")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	var req CancelSessionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	if err := h.sessions.Cancel(c.UserContext(), sessionID, req.UserID); err != nil {
		return h.fail(c, err, msgCancelFailed)
	}

	return respondOK(c, fiber.Map{"message": "Session cancelled"})
}

// RateSession PUT /api/sessions/:sessionId/rate
func (h *Handlers) RateSession(c *fiber.Ctx) error {
	sessionID, ok := idParam(c, "sessionId")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid session id")
	}

	var req RateSessionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	agg, err := h.sessions.Rate(c.UserContext(), sessionID, req.StudentUserID, req.Rating)
	if err != nil {
		return h.fail(c, err, msgRateFailed)
	}

	return respondOK(c, fiber.Map{
		"message":       "Rating submitted",
		"teacherRating": agg,
	})
}

// ListSessions GET /api/sessions/:userId
func (h *Handlers) ListSessions(c *fiber.Ctx) error {
	userID, ok := idParam(c, "userId")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	sessions, err := h.sessions.ListSessions(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, msgListFailed)
	}

	return respondOK(c, fiber.Map{"sessions": sessions})
}

// SessionsSummary GET /api/sessions-summary/:userId
func (h *Handlers) SessionsSummary(c *fiber.Ctx) error {
	userID, ok := idParam(c, "userId")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	summary, err := h.sessions.Summary(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, msgSummaryFailed)
	}

	return respondOK(c, fiber.Map{
		"totalSessions":  summary.TotalSessions,
		"hoursCompleted": summary.HoursCompleted,
	})
}

// ListTeachers GET /api/teachers
func (h *Handlers) ListTeachers(c *fiber.Ctx) error {
	teachers, err := h.sessions.ListTeachers(c.UserContext())
	if err != nil {
		return h.fail(c, err, msgTeachersFailed)
	}

	return respondOK(c, fiber.Map{
		"teachers": teachers,
		"count":    len(teachers),
	})
}

// Health GET /health
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": c.App().Config().AppName})
}

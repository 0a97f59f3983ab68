package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type BookSessionRequest struct {
	StudentUserID int64  `json:"studentUserId" validate:"required,gt=0"`
	TeacherUserID int64  `json:"teacherUserId" validate:"required,gt=0"`
	SubjectName   string `json:"subjectName" validate:"max=255"`
	SubjectID     *int64 `json:"subjectId" validate:"omitempty,gt=0"`
	SessionDate   string `json:"sessionDate" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"startTime" validate:"required"`
	EndTime       string `json:"endTime" validate:"required"`
}

// TeacherActionRequest тело accept/complete
type TeacherActionRequest struct {
	TeacherUserID int64 `json:"teacherUserId" validate:"required,gt=0"`
}

type CancelSessionRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type RateSessionRequest struct {
	StudentUserID int64 `json:"studentUserId" validate:"required,gt=0"`
	Rating        int   `json:"rating" validate:"required,min=1,max=5"`
}

// bind разбирает JSON-тело и валидирует его; при ошибке уже отправлен ответ 400
func (h *Handlers) bind(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, respondError(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if err := h.validate.Struct(req); err != nil {
		return false, respondError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	return true, nil
}

// idParam достаёт положительный числовой параметр пути
func idParam(c *fiber.Ctx, name string) (int64, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid input"
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}

	return "Missing or invalid fields: " + strings.Join(fields, ", ")
}

package handlers

// Ключи fiber.Locals
const (
	LocalRequestID = "requestId"
)

const HeaderRequestID = "X-Request-ID"

// Сообщения об ошибках хранилища. Детали наружу не отдаются, только в лог.
const (
	msgBookFailed     = "Failed to book session"
	msgAcceptFailed   = "Failed to accept session"
	msgCompleteFailed = "Failed to complete session"
	msgCancelFailed   = "Failed to cancel session"
	msgRateFailed     = "Failed to submit rating"
	msgListFailed     = "Failed to get sessions"
	msgSummaryFailed  = "Failed to get summary"
	msgTeachersFailed = "Failed to get teachers"
)

package model

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// RoleContext результат разрешения аккаунта в ролевую запись.
// RecordID это students.id или teachers.id; 0 если записи роли нет.
type RoleContext struct {
	AccountID int64
	Role      Role
	RecordID  int64
}

// Student возвращает id записи студента, если аккаунт студент с записью роли
func (r *RoleContext) Student() (int64, bool) {
	if r == nil || r.Role != RoleStudent || r.RecordID == 0 {
		return 0, false
	}
	return r.RecordID, true
}

// Teacher возвращает id записи учителя, если аккаунт учитель с записью роли
func (r *RoleContext) Teacher() (int64, bool) {
	if r == nil || r.Role != RoleTeacher || r.RecordID == 0 {
		return 0, false
	}
	return r.RecordID, true
}

// Owns проверяет, является ли аккаунт студентом или учителем занятия
func (r *RoleContext) Owns(s *Session) bool {
	if id, ok := r.Student(); ok && id == s.StudentID {
		return true
	}
	if id, ok := r.Teacher(); ok && id == s.TeacherID {
		return true
	}
	return false
}

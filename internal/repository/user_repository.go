package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
)

// UserRepository чтение аккаунтов и их ролевых записей.
// Регистрация живёт в другом сервисе, здесь только чтение.
type UserRepository struct {
	*base.Repository
}

func NewUserRepository(db base.DB) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(db)}
}

// ResolveRole сопоставляет аккаунт с записью его роли.
// nil если аккаунта нет; RecordID = 0 если записи роли нет.
func (r *UserRepository) ResolveRole(ctx context.Context, accountID int64) (*model.RoleContext, error) {
	query := `
		SELECT u.id, u.user_type,
		       CASE u.user_type
		           WHEN 'student' THEN COALESCE(s.id, 0)
		           WHEN 'teacher' THEN COALESCE(t.id, 0)
		           ELSE 0
		       END
		FROM users u
		LEFT JOIN students s ON s.user_id = u.id
		LEFT JOIN teachers t ON t.user_id = u.id
		WHERE u.id = $1
	`

	var rc model.RoleContext
	err := r.QueryRow(ctx, query, accountID).Scan(&rc.AccountID, &rc.Role, &rc.RecordID)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Аккаунт не найден
		}
		return nil, fmt.Errorf("resolve role: %w", err)
	}

	return &rc, nil
}

// GetTelegramChatID чат для уведомлений; nil если бот не привязан
func (r *UserRepository) GetTelegramChatID(ctx context.Context, accountID int64) (*int64, error) {
	var chatID *int64
	err := r.QueryRow(ctx, `SELECT telegram_chat_id FROM users WHERE id = $1`, accountID).Scan(&chatID)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get telegram chat id: %w", err)
	}
	return chatID, nil
}

// ListTeachers каталог активных учителей, лучшие по рейтингу сначала
func (r *UserRepository) ListTeachers(ctx context.Context) ([]*model.TeacherCard, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, COALESCE(u.phone, ''),
		       COALESCE(t.subject_specialization, ''), COALESCE(t.years_experience, ''),
		       t.bio, t.hourly_rate::float8, t.location,
		       t.rating::float8, t.total_ratings
		FROM users u
		JOIN teachers t ON u.id = t.user_id
		WHERE u.is_active
		ORDER BY t.rating DESC, u.first_name ASC
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	defer rows.Close()

	teachers := []*model.TeacherCard{}
	for rows.Next() {
		var c model.TeacherCard
		err := rows.Scan(
			&c.AccountID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Phone,
			&c.Subject,
			&c.Experience,
			&c.Bio,
			&c.HourlyRate,
			&c.Location,
			&c.Average,
			&c.Count,
		)
		if err != nil {
			return nil, fmt.Errorf("scan teacher: %w", err)
		}
		teachers = append(teachers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teachers: %w", err)
	}

	return teachers, nil
}

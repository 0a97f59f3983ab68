package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"go.uber.org/zap"
)

type SubjectRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewSubjectRepository(db base.DB, logger *zap.Logger) *SubjectRepository {
	return &SubjectRepository{
		Repository: base.NewRepository(db),
		logger:     logger,
	}
}

// FindOrCreateByName находит предмет по имени без учёта регистра или создаёт его.
// Повторный вызов с тем же именем возвращает тот же id.
func (r *SubjectRepository) FindOrCreateByName(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("find or create subject: empty name")
	}

	// DO UPDATE вместо DO NOTHING: строка-конфликт блокируется и возвращается,
	// даже если её вставила параллельная транзакция после нашего снимка
	query := `
		INSERT INTO subjects (name, description)
		VALUES ($1, $2)
		ON CONFLICT ((lower(name))) DO UPDATE SET name = subjects.name
		RETURNING id
	`

	var id int64
	err := r.QueryRow(ctx, query, name, name+" subject").Scan(&id)
	if base.IsNotFound(err) {
		// Новый оператор берёт свежий снимок и видит закоммиченную строку
		err = r.QueryRow(ctx, `SELECT id FROM subjects WHERE lower(name) = lower($1)`, name).Scan(&id)
	}
	if err != nil {
		r.logger.Error("Failed to resolve subject",
			zap.String("name", name),
			zap.Error(err))
		return 0, fmt.Errorf("find or create subject: %w", err)
	}

	r.logger.Debug("Subject resolved",
		zap.Int64("subject_id", id),
		zap.String("name", name))

	return id, nil
}

// GetByID получает предмет по ID
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*model.Subject, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), created_at
		FROM subjects
		WHERE id = $1
	`

	var subject model.Subject
	err := r.QueryRow(ctx, query, id).Scan(
		&subject.ID,
		&subject.Name,
		&subject.Description,
		&subject.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subject by id: %w", err)
	}

	return &subject, nil
}

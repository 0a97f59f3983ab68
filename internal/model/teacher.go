package model

// TeacherAggregate производный рейтинг учителя, всегда пересчитывается целиком
type TeacherAggregate struct {
	Average float64 `json:"rating"`
	Count   int     `json:"total_ratings"`
}

// TeacherCard строка каталога учителей
type TeacherCard struct {
	AccountID  int64    `json:"id"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Subject    string   `json:"subject"`
	Experience string   `json:"experience"`
	Bio        *string  `json:"bio"`
	HourlyRate *float64 `json:"hourly_rate"`
	Location   *string  `json:"location"`
	TeacherAggregate
}

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]SessionStatus]bool{
		{SessionStatusScheduled, SessionStatusInProgress}: true,
		{SessionStatusScheduled, SessionStatusCancelled}:  true,
		{SessionStatusInProgress, SessionStatusCompleted}: true,
	}
	all := []SessionStatus{SessionStatusScheduled, SessionStatusInProgress, SessionStatusCompleted, SessionStatusCancelled}

	for _, from := range all {
		for _, to := range all {
			require.Equal(t, allowed[[2]SessionStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	require.True(t, SessionStatusCompleted.IsTerminal())
	require.True(t, SessionStatusCancelled.IsTerminal())
	require.False(t, SessionStatusScheduled.IsTerminal())
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	require.Equal(t, TimeOfDay(570), tod)
	require.Equal(t, "09:30", tod.String())

	tod, err = ParseTimeOfDay("23:59:00")
	require.NoError(t, err)
	require.Equal(t, TimeOfDay(23*60+59), tod)

	_, err = ParseTimeOfDay("9h30")
	require.Error(t, err)
	_, err = ParseTimeOfDay("10:00:30")
	require.Error(t, err)
}

func TestTimeOfDay_JSONAndMicroseconds(t *testing.T) {
	b, err := json.Marshal(TimeOfDay(7*60 + 5))
	require.NoError(t, err)
	require.Equal(t, `"07:05"`, string(b))

	var tod TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"11:30"`), &tod))
	require.Equal(t, TimeOfDay(690), tod)

	require.Equal(t, tod, TimeOfDayFromMicroseconds(tod.Microseconds()))
}

func TestTimeOfDay_On(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got := TimeOfDay(9 * 60).On(date, loc)
	require.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, loc), got)
}

func TestRoleContext(t *testing.T) {
	student := &RoleContext{AccountID: 1, Role: RoleStudent, RecordID: 10}
	teacher := &RoleContext{AccountID: 2, Role: RoleTeacher, RecordID: 20}
	orphan := &RoleContext{AccountID: 3, Role: RoleTeacher}

	id, ok := student.Student()
	require.True(t, ok)
	require.Equal(t, int64(10), id)
	_, ok = student.Teacher()
	require.False(t, ok)

	_, ok = orphan.Teacher()
	require.False(t, ok)

	var missing *RoleContext
	_, ok = missing.Student()
	require.False(t, ok)

	s := &Session{StudentID: 10, TeacherID: 20}
	require.True(t, student.Owns(s))
	require.True(t, teacher.Owns(s))
	require.False(t, (&RoleContext{Role: RoleStudent, RecordID: 11}).Owns(s))
}

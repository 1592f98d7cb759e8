package seed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

const sampleCSV = `date,start_time,end_time,drive_hours,drive_minutes,work_hours,work_minutes,breaks,is_compensated
2024-03-04,06:00,16:00,5,30,1,0,15;30,false
2024-03-05, 22:00,06:00,4,0,0,45,,true
`

type fakeRepo struct {
	created []domain.Shift
	failOn  string
}

func (f *fakeRepo) CreateShift(shift *domain.Shift) error {
	if shift.Date == f.failOn {
		return errors.New("duplicate")
	}
	f.created = append(f.created, *shift)
	return nil
}

func TestParseShiftsCSV(t *testing.T) {
	shifts, err := ParseShiftsCSV(strings.NewReader(sampleCSV), 9)
	require.NoError(t, err)
	require.Len(t, shifts, 2)

	first := shifts[0]
	assert.Equal(t, int64(9), first.DriverID)
	assert.Equal(t, "2024-03-04", first.Date)
	assert.Equal(t, 330, first.TotalDriveMinutes())
	assert.Equal(t, 60, first.TotalWorkMinutes())
	assert.Equal(t, []domain.Break{{DurationMinutes: 15}, {DurationMinutes: 30}}, first.Breaks)
	assert.False(t, first.IsCompensated)

	second := shifts[1]
	assert.Equal(t, "22:00", second.StartTime)
	assert.Empty(t, second.Breaks)
	assert.True(t, second.IsCompensated)
}

func TestParseShiftsCSVColumnOrderIsFree(t *testing.T) {
	data := "work_minutes,work_hours,drive_minutes,drive_hours,end_time,start_time,date\n0,0,0,4,10:00,06:00,2024-03-04\n"
	shifts, err := ParseShiftsCSV(strings.NewReader(data), 1)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, 240, shifts[0].TotalDriveMinutes())
}

func TestParseShiftsCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "missing column", data: "date,start_time\n", want: "缺少列 end_time"},
		{name: "bad integer", data: "date,start_time,end_time,drive_hours,drive_minutes,work_hours,work_minutes\n2024-03-04,06:00,16:00,x,0,0,0\n", want: "第 2 行: drive_hours 不是合法的整数"},
		{name: "bad break", data: "date,start_time,end_time,drive_hours,drive_minutes,work_hours,work_minutes,breaks\n2024-03-04,06:00,16:00,4,0,0,0,15;abc\n", want: "第 2 行: 休息时长 \"abc\" 不是合法的整数"},
		{name: "invalid shift", data: "date,start_time,end_time,drive_hours,drive_minutes,work_hours,work_minutes\n2024-03-04,06:00,16:00,4,75,0,0\n", want: "第 2 行: 分钟数必须在 0 到 59 之间"},
		{name: "bad flag", data: "date,start_time,end_time,drive_hours,drive_minutes,work_hours,work_minutes,is_compensated\n2024-03-04,06:00,16:00,4,0,0,0,maybe\n", want: "第 2 行: is_compensated 不是合法的布尔值"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseShiftsCSV(strings.NewReader(tt.data), 1)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestImportShiftsSkipsFailures(t *testing.T) {
	shifts, err := ParseShiftsCSV(strings.NewReader(sampleCSV), 9)
	require.NoError(t, err)

	repo := &fakeRepo{failOn: "2024-03-04"}
	assert.Equal(t, 1, ImportShifts(repo, shifts))
	require.Len(t, repo.created, 1)
	assert.Equal(t, "2024-03-05", repo.created[0].Date)
}

func TestImportShiftsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shifts.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	repo := &fakeRepo{}
	n, err := ImportShiftsCSV(repo, 9, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ImportShiftsCSV(repo, 9, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
)

func TestGenerateRandomOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, `^\d{6}$`, GenerateRandomOTP())
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	assert.Len(t, []rune(GenerateRandomPassword(12)), 12)
	assert.Empty(t, GenerateRandomPassword(0))
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+\d{1,3}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, GenerateUsernameFromChineseName(GenerateRandomChineseName()))
	}
}

func TestGenerateRandomLicenseNumber(t *testing.T) {
	assert.Regexp(t, `^DE-[A-Z]{2}\d{6}$`, GenerateRandomLicenseNumber())
}

func TestGenerateRandomShiftIsValid(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		s := GenerateRandomShift(7, date)
		require.NoError(t, ValidateShift(&s))
		assert.Equal(t, "2024-03-04", s.Date)
		assert.Equal(t, int64(7), s.DriverID)
		assert.NotEmpty(t, s.Breaks)
		assert.LessOrEqual(t, s.TotalDriveMinutes(), 600)
	}
}

func TestGenerateRandomShiftHistorySkipsSundays(t *testing.T) {
	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // 周一
	shifts := GenerateRandomShiftHistory(1, from, 28)

	assert.GreaterOrEqual(t, len(shifts), 20)
	assert.LessOrEqual(t, len(shifts), 24)
	for _, s := range shifts {
		date, err := time.Parse(DateLayout, s.Date)
		require.NoError(t, err)
		assert.NotEqual(t, time.Sunday, date.Weekday())
	}
}

func TestGenerateRandomDriver(t *testing.T) {
	driver, err := GenerateRandomDriver("secret", "example.com")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleDriver, driver.Role)
	assert.Equal(t, driver.Username+"@example.com", driver.Email)
	assert.NotEqual(t, "secret", driver.PasswordHash)
	assert.NotEmpty(t, driver.LicenseNumber)
}

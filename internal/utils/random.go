package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateRandomLicenseNumber 生成形如 DE-AB123456 的驾照编号
func GenerateRandomLicenseNumber() string {
	number := "DE-"
	for i := 0; i < 2; i++ {
		number += string(upperLetters[rand.Intn(len(upperLetters))])
	}
	for i := 0; i < 6; i++ {
		number += string(digits[rand.Intn(len(digits))])
	}
	return number
}

func GenerateRandomDriver(password string, emailDomainName string) (*domain.Driver, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	driver := &domain.Driver{
		Username:      username,
		PasswordHash:  string(passwordHash),
		FullName:      fullName,
		Email:         username + "@" + emailDomainName,
		Role:          domain.RoleDriver,
		LicenseNumber: GenerateRandomLicenseNumber(),
	}

	return driver, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

// GenerateRandomShift 生成 date 当天的一个班次，开始于 5 点到 9 点之间，持续 8 到 13 小时
func GenerateRandomShift(driverID int64, date time.Time) domain.Shift {
	startHour := rand.Intn(5) + 5
	startMinute := rand.Intn(4) * 15
	spanMinutes := (rand.Intn(6) + 8) * 60

	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMinute, 0, 0, time.UTC)
	end := start.Add(time.Duration(spanMinutes) * time.Minute)

	// 至少留出 1 小时给休息，剩下的时间拆分成驾驶和其他工作
	available := spanMinutes - 60
	drive := rand.Intn(available-4*60) + 4*60
	if drive > 10*60 {
		drive = 10 * 60
	}
	work := rand.Intn(available - drive + 1)

	shift := domain.Shift{
		DriverID:     driverID,
		Date:         start.Format(DateLayout),
		StartTime:    start.Format(ClockLayout),
		EndTime:      end.Format(ClockLayout),
		DriveHours:   int32(drive / 60),
		DriveMinutes: int32(drive % 60),
		WorkHours:    int32(work / 60),
		WorkMinutes:  int32(work % 60),
		Breaks:       make([]domain.Break, 0),
	}

	// 大部分班次按规定休息，少数班次故意只休息一次短休息
	switch rand.Intn(4) {
	case 0:
		shift.Breaks = append(shift.Breaks, domain.Break{DurationMinutes: 15}, domain.Break{DurationMinutes: 30})
	case 1:
		shift.Breaks = append(shift.Breaks, domain.Break{DurationMinutes: 20})
	default:
		shift.Breaks = append(shift.Breaks, domain.Break{DurationMinutes: 45})
	}

	return shift
}

// GenerateRandomShiftHistory 从 from 开始生成 days 天的班次记录，每周随机休息一到两天
func GenerateRandomShiftHistory(driverID int64, from time.Time, days int) []domain.Shift {
	shifts := make([]domain.Shift, 0, days)

	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		weekday := date.Weekday()
		if weekday == time.Sunday {
			continue
		}
		if weekday == time.Saturday && rand.Intn(2) == 0 {
			continue
		}
		shifts = append(shifts, GenerateRandomShift(driverID, date))
	}

	return shifts
}

package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/domain"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/utils"
)

// CSV 必须包含的列，顺序不限
var requiredColumns = []string{
	"date",
	"start_time",
	"end_time",
	"drive_hours",
	"drive_minutes",
	"work_hours",
	"work_minutes",
}

// 可选的列：breaks 以分号分隔每次休息的分钟数，例如 "15;30"
const (
	breaksColumn        = "breaks"
	isCompensatedColumn = "is_compensated"
)

type ShiftCreator interface {
	CreateShift(shift *domain.Shift) error
}

// ParseShiftsCSV 解析 CSV 中的班次记录，任意一行不合法时返回带行号的错误
func ParseShiftsCSV(r io.Reader, driverID int64) ([]domain.Shift, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("缺少列 %s", col)
		}
	}

	shifts := make([]domain.Shift, 0)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		shift, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		shift.DriverID = driverID

		if err := utils.ValidateShift(&shift); err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		shifts = append(shifts, shift)
	}

	return shifts, nil
}

func parseRecord(record []string, columns map[string]int) (domain.Shift, error) {
	get := func(col string) string {
		i, ok := columns[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	parseInt32 := func(col string) (int32, error) {
		v, err := strconv.ParseInt(get(col), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%s 不是合法的整数", col)
		}
		return int32(v), nil
	}

	shift := domain.Shift{
		Date:      get("date"),
		StartTime: get("start_time"),
		EndTime:   get("end_time"),
		Breaks:    make([]domain.Break, 0),
	}

	var err error
	if shift.DriveHours, err = parseInt32("drive_hours"); err != nil {
		return shift, err
	}
	if shift.DriveMinutes, err = parseInt32("drive_minutes"); err != nil {
		return shift, err
	}
	if shift.WorkHours, err = parseInt32("work_hours"); err != nil {
		return shift, err
	}
	if shift.WorkMinutes, err = parseInt32("work_minutes"); err != nil {
		return shift, err
	}

	if breaks := get(breaksColumn); breaks != "" {
		for _, b := range strings.Split(breaks, ";") {
			minutes, err := strconv.ParseInt(strings.TrimSpace(b), 10, 32)
			if err != nil {
				return shift, fmt.Errorf("休息时长 %q 不是合法的整数", b)
			}
			shift.Breaks = append(shift.Breaks, domain.Break{DurationMinutes: int32(minutes)})
		}
	}

	if compensated := get(isCompensatedColumn); compensated != "" {
		shift.IsCompensated, err = strconv.ParseBool(compensated)
		if err != nil {
			return shift, fmt.Errorf("%s 不是合法的布尔值", isCompensatedColumn)
		}
	}

	return shift, nil
}

// ImportShifts 逐条插入班次，返回成功插入的数量。单条失败只记录日志
func ImportShifts(repo ShiftCreator, shifts []domain.Shift) int {
	cnt := 0
	for i := range shifts {
		if err := repo.CreateShift(&shifts[i]); err != nil {
			slog.Error("无法插入班次", "date", shifts[i].Date, "startTime", shifts[i].StartTime, "error", err)
			continue
		}
		cnt++
	}
	return cnt
}

func ImportShiftsCSV(repo ShiftCreator, driverID int64, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	shifts, err := ParseShiftsCSV(file, driverID)
	if err != nil {
		return 0, err
	}

	return ImportShifts(repo, shifts), nil
}

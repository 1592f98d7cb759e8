package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/config"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/repository"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/seed"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var driverID int64
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机司机, 2: 为司机插入随机班次, 3: 从 CSV 导入司机的班次)")
	flag.IntVar(&n, "n", 5, "要插入的司机数量，或随机班次覆盖的天数")
	flag.Int64Var(&driverID, "driver-id", 0, "班次所属的司机 ID")
	flag.StringVar(&file, "file", "", "要导入的 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的司机数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				driver, err := utils.GenerateRandomDriver(cfg.Seed.Driver.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机司机", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateDriver(driver); err != nil {
					slog.Error("无法插入司机", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入司机成功", slog.Int("count", n-cnt))
		}
	case 2:
		if !checkDriver(repo, driverID) {
			return
		}
		if n <= 0 {
			slog.Error("请输入合法的天数")
			return
		}

		// 生成截至今天的 n 天班次记录
		from := time.Now().AddDate(0, 0, -n+1)
		shifts := utils.GenerateRandomShiftHistory(driverID, from, n)
		cnt := seed.ImportShifts(repo, shifts)

		slog.Info("插入随机班次成功", slog.Int64("driver_id", driverID), slog.Int("count", cnt))
	case 3:
		if !checkDriver(repo, driverID) {
			return
		}
		if file == "" {
			slog.Error("请指定 CSV 文件")
			return
		}

		cnt, err := seed.ImportShiftsCSV(repo, driverID, file)
		if err != nil {
			slog.Error("无法导入班次", slog.String("file", file), slog.String("error", err.Error()))
			return
		}

		slog.Info("导入班次成功", slog.Int64("driver_id", driverID), slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}

func checkDriver(repo *repository.Repository, driverID int64) bool {
	if driverID <= 0 {
		slog.Error("请输入合法的司机 ID")
		return false
	}

	if _, err := repo.GetDriverByID(driverID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			slog.Error("指定的司机不存在", slog.Int64("driver_id", driverID))
		default:
			slog.Error("无法获取司机", slog.String("error", err.Error()))
		}
		return false
	}

	return true
}

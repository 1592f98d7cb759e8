package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/clock"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/config"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/mailqueue"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/reminder"
	"github.com/sysu-ecnc-dev/driver-hours/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// 由 cron 定时调用，每次运行检查一遍所有在职司机
func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Compliance.Timezone)
	if err != nil {
		logger.Error("无法加载时区", "timezone", cfg.Compliance.Timezone, "error", err)
		os.Exit(1)
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	if _, err := mailqueue.Declare(ch); err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	/**********************************************
	 * 发送补偿提醒
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)
	r := reminder.New(repo, compliance.New(loc), clock.NewReal(), ch, cfg.Reminder.LeadDays, cfg.Reminder.Concurrency)

	start := time.Now()
	sent, err := r.Run(context.Background())
	if err != nil {
		logger.Error("发送补偿提醒失败", "sent", sent, "error", err)
		return
	}

	logger.Info("补偿提醒发送完成", "sent", sent, "leadDays", cfg.Reminder.LeadDays, "duration", time.Since(start))
}

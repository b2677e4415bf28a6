package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/config"
	"github.com/restobook/reservation-platform/internal/db"
	"github.com/restobook/reservation-platform/internal/mailer"
	"github.com/restobook/reservation-platform/internal/model"
	"github.com/restobook/reservation-platform/internal/repository"
	"github.com/restobook/reservation-platform/internal/scheduler"
	"github.com/restobook/reservation-platform/internal/service"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// 1. Загружаем конфиг БД из env.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load db config")
	}
	appCfg := config.LoadAppConfig()

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init db")
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("auto migrate")
	}
	if err := seedPolicyConfig(gormDB); err != nil {
		log.Fatal().Err(err).Msg("seed policy config")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("sql DB")
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	reservationRepo := repository.NewGormReservationRepository(gormDB)
	tableRepo := repository.NewGormTableRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	dishRepo := repository.NewGormDishRepository(gormDB)
	mealTimeRepo := repository.NewGormMealTimeRepository(gormDB)
	policyRepo := repository.NewGormPolicyRepository(gormDB)
	notificationRepo := repository.NewGormNotificationRepository(gormDB)

	// 5. Почта: SMTP при заданном хосте, иначе лог.
	var mail mailer.Mailer
	if appCfg.SMTPEnabled() {
		mail = &mailer.SMTPMailer{
			Host:     appCfg.SMTPHost,
			Port:     appCfg.SMTPPort,
			Username: appCfg.SMTPUser,
			Password: appCfg.SMTPPass,
			From:     appCfg.MailFrom,
		}
	} else {
		mail = &mailer.LogMailer{Log: log}
	}

	// 6. Сервисы движка.
	reservationSvc := service.NewReservationService(
		gormDB, reservationRepo, tableRepo, userRepo, dishRepo,
		mealTimeRepo, policyRepo, notificationRepo, mail, log,
	)

	// 7. Планировщик фоновых проходов.
	sched := &scheduler.Scheduler{
		Log: log,
		Sweeps: []scheduler.Sweep{
			{
				Name:     "auto_finish",
				Interval: time.Duration(appCfg.AutoFinishIntervalSec) * time.Second,
				Run:      reservationSvc.AutoFinish,
			},
			{
				Name:     "reminders",
				Interval: time.Duration(appCfg.ReminderIntervalSec) * time.Second,
				Run:      reservationSvc.SendReminders,
			},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	log.Info().Msg("reservation engine started")

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down...")
	cancel()
	<-done
}

// seedPolicyConfig создаёт строку политик с дефолтами, если её ещё нет.
func seedPolicyConfig(gormDB *gorm.DB) error {
	var count int64
	if err := gormDB.Model(&model.PolicyConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	cfg := model.PolicyConfig{
		ID:                          uuid.New(),
		MaxCancelLeadMinutes:        60,
		MaxReportLeadMinutes:        60,
		MaxReportAllowed:            2,
		MaxNoShowAllowed:            3,
		ConfirmationDeadlineMinutes: 120,
	}
	return gormDB.Create(&cfg).Error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/booking"
	"github.com/restobook/reservation-platform/internal/mailer"
	"github.com/restobook/reservation-platform/internal/model"
	"github.com/restobook/reservation-platform/internal/repository"
)

// ReservationService — жизненный цикл брони: создание, подтверждение,
// отмена/перенос, удаление и фоновые проходы (auto-finish, напоминания).
// Каждая операция — одна транзакция; конкурирующие мутации одной брони
// сериализуются блокировкой строки.
type ReservationService struct {
	db *gorm.DB

	reservations  repository.ReservationRepository
	tables        repository.TableRepository
	users         repository.UserRepository
	dishes        repository.DishRepository
	mealTimes     repository.MealTimeRepository
	policies      repository.PolicyRepository
	notifications repository.NotificationRepository

	mail mailer.Mailer
	log  zerolog.Logger

	// Подменяется в тестах.
	now func() time.Time
}

func NewReservationService(
	db *gorm.DB,
	reservations repository.ReservationRepository,
	tables repository.TableRepository,
	users repository.UserRepository,
	dishes repository.DishRepository,
	mealTimes repository.MealTimeRepository,
	policies repository.PolicyRepository,
	notifications repository.NotificationRepository,
	mail mailer.Mailer,
	log zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		db:            db,
		reservations:  reservations,
		tables:        tables,
		users:         users,
		dishes:        dishes,
		mealTimes:     mealTimes,
		policies:      policies,
		notifications: notifications,
		mail:          mail,
		log:           log,
		now:           time.Now,
	}
}

// Create создаёт бронь. Проверка пересечений и вставка выполняются
// в одной транзакции под блокировкой строки стола, чтобы два
// одновременных запроса не забронировали один слот.
func (s *ReservationService) Create(
	ctx context.Context,
	input CreateReservationInput,
	callerUserID uuid.UUID,
) (*model.Reservation, error) {
	startClock, err := booking.NormalizeClock(input.Window.StartTime)
	if err != nil {
		return nil, err
	}
	if _, err := booking.ParseDate(input.Window.Date); err != nil {
		return nil, err
	}

	table, err := s.tables.GetByIDWithRestaurant(ctx, input.TableID.String())
	if err != nil {
		return nil, wrapNotFound(err, "table %s", input.TableID)
	}
	if table.RestaurantBloc == nil {
		return nil, fmt.Errorf("%w: table %s has no restaurant bloc", booking.ErrNotFound, input.TableID)
	}
	restaurantID := table.RestaurantBloc.RestaurantID

	user, err := s.users.GetByID(ctx, callerUserID.String())
	if err != nil {
		return nil, wrapNotFound(err, "user %s", callerUserID)
	}

	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, wrapNotFound(err, "policy config")
	}

	active, err := s.mealTimes.ListActiveByRestaurant(ctx, restaurantID.String())
	if err != nil {
		return nil, err
	}
	windows, err := toMealWindows(active)
	if err != nil {
		return nil, err
	}

	// Конец не указан — берём конец окна приёма пищи, содержащего начало.
	endClock := input.Window.EndTime
	if endClock == "" {
		w, err := booking.FindWindowContaining(windows, startClock)
		if err != nil {
			return nil, err
		}
		endClock = booking.FormatClock(w.End)
	} else {
		if endClock, err = booking.NormalizeClock(endClock); err != nil {
			return nil, err
		}
	}

	startAt, endAt, err := booking.WindowInstants(input.Window.Date, startClock, endClock)
	if err != nil {
		return nil, err
	}
	if err := booking.ValidateReservationTime(startAt, endAt, s.now(), policy.MaxCancelLeadMinutes); err != nil {
		return nil, err
	}

	mealWindow, err := booking.MatchWindow(windows, startClock, endClock)
	if err != nil {
		return nil, err
	}

	var selected []model.Dish
	if len(input.DishIDs) > 0 {
		selected, err = s.dishes.ListByIDs(ctx, uuidStrings(input.DishIDs))
		if err != nil {
			return nil, err
		}
		if len(selected) != len(input.DishIDs) {
			return nil, fmt.Errorf("%w: one or more dishes do not exist", booking.ErrValidation)
		}
		if err := booking.ValidateDishCoherence(mealWindow, toDishMealTypes(selected)); err != nil {
			return nil, err
		}
	}

	reservation := &model.Reservation{
		ID:           uuid.New(),
		TableID:      table.ID,
		UserID:       user.ID,
		CustomerName: input.CustomerName,
		Phone:        input.Phone,
		Status:       model.ReservationStatusActive,
		Dishes:       selected,
	}
	reservation.QRPayload = booking.QRPayload(reservation.ID)

	window := &model.TimeWindow{
		ID:        uuid.New(),
		Date:      input.Window.Date,
		StartTime: startClock,
		EndTime:   endClock,
		Label:     input.Window.Label,
	}
	reservation.TimeWindowID = window.ID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Блокировка строки стола сериализует конкурирующие создания
		// для одного стола: проверка и вставка становятся атомарными.
		var locked model.Table
		if err := repository.ForUpdate(tx).First(&locked, "id = ?", table.ID).Error; err != nil {
			return wrapNotFound(err, "table %s", table.ID)
		}

		conflicting, err := repository.FindConflictTx(tx, table.ID.String(), window.Date, startClock, endClock, "")
		if err != nil {
			return err
		}
		if conflicting != nil {
			return fmt.Errorf(
				"%w: table %s is already reserved in this slot", booking.ErrConflict, table.ID)
		}

		if err := tx.Create(window).Error; err != nil {
			return err
		}
		if err := tx.Omit("Dishes.*").Create(reservation).Error; err != nil {
			return err
		}

		notif := &model.Notification{
			ID:            uuid.New(),
			Message:       fmt.Sprintf("New reservation by %s for table %s", input.CustomerName, table.Name),
			UserID:        &user.ID,
			ReservationID: &reservation.ID,
		}
		return tx.Create(notif).Error
	})
	if err != nil {
		return nil, err
	}

	reservation.TimeWindow = window
	reservation.Table = table
	reservation.User = user
	return reservation, nil
}

// ConfirmByCode подтверждает бронь по QR-коду (действие персонала).
// Повторный вызов безвреден.
func (s *ReservationService) ConfirmByCode(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	var res *model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r model.Reservation
		if err := repository.ForUpdate(tx).First(&r, "id = ?", id.String()).Error; err != nil {
			return wrapNotFound(err, "reservation %s", id)
		}
		r.Confirmed = true
		r.Status = model.ReservationStatusConfirmed
		if err := tx.Save(&r).Error; err != nil {
			return err
		}
		res = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ConfirmByCustomer подтверждает бронь самим гостем; повторное
// подтверждение — конфликт.
func (s *ReservationService) ConfirmByCustomer(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	var res *model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r model.Reservation
		if err := repository.ForUpdate(tx).First(&r, "id = ?", id.String()).Error; err != nil {
			return wrapNotFound(err, "reservation %s", id)
		}
		if r.ConfirmedByCustomer {
			return fmt.Errorf("%w: reservation %s already confirmed by customer", booking.ErrConflict, id)
		}
		r.ConfirmedByCustomer = true
		r.Status = model.ReservationStatusConfirmedByCustomer
		if err := tx.Save(&r).Error; err != nil {
			return err
		}

		notif := &model.Notification{
			ID:            uuid.New(),
			Message:       fmt.Sprintf("Reservation confirmed by %s for table %s", r.CustomerName, r.TableID),
			UserID:        &r.UserID,
			ReservationID: &r.ID,
		}
		if err := tx.Create(notif).Error; err != nil {
			return err
		}
		res = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Update применяет частичное обновление: смену стола, отмену, перенос,
// переименование и правку окна. Всё или ничего: отказ любой части
// откатывает транзакцию целиком.
func (s *ReservationService) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateReservationInput,
	caller booking.Caller,
) (*ReservationSummary, error) {
	now := s.now()

	var summary *ReservationSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res model.Reservation
		if err := repository.ForUpdate(tx).First(&res, "id = ?", id.String()).Error; err != nil {
			return wrapNotFound(err, "reservation %s", id)
		}
		if !caller.CanManage() && caller.UserID != res.UserID {
			return fmt.Errorf("%w: reservation %s belongs to another user", booking.ErrPolicyDenied, id)
		}

		var window model.TimeWindow
		if err := tx.First(&window, "id = ?", res.TimeWindowID).Error; err != nil {
			return wrapNotFound(err, "time window of reservation %s", id)
		}
		var user model.User
		if err := tx.First(&user, "id = ?", res.UserID).Error; err != nil {
			return wrapNotFound(err, "user %s", res.UserID)
		}
		var policy model.PolicyConfig
		if err := tx.First(&policy).Error; err != nil {
			return wrapNotFound(err, "policy config")
		}

		startAt, err := booking.CombineDateTime(window.Date, window.StartTime)
		if err != nil {
			return err
		}
		leadMinutes := booking.MinutesUntil(now, startAt)

		// Смена стола: пересечения проверяются по текущему окну брони,
		// сама бронь из проверки исключается.
		if input.TableID != nil {
			var table model.Table
			if err := tx.First(&table, "id = ?", input.TableID.String()).Error; err != nil {
				return wrapNotFound(err, "table %s", *input.TableID)
			}
			conflicting, err := repository.FindConflictTx(
				tx, table.ID.String(), window.Date, window.StartTime, window.EndTime, res.ID.String())
			if err != nil {
				return err
			}
			if conflicting != nil {
				return fmt.Errorf(
					"%w: table %s is already reserved in this slot", booking.ErrConflict, table.ID)
			}
			res.TableID = table.ID
		}

		if input.Cancel {
			if leadMinutes < policy.MaxCancelLeadMinutes {
				return fmt.Errorf(
					"%w: cancellation allowed no later than %d minutes before start",
					booking.ErrConflict, policy.MaxCancelLeadMinutes)
			}
			if user.NoShowCount >= policy.MaxNoShowAllowed {
				return fmt.Errorf(
					"%w: no-show limit reached (%d)", booking.ErrConflict, policy.MaxNoShowAllowed)
			}
			res.Cancelled = true
			res.Status = model.ReservationStatusCancelled

			notif := &model.Notification{
				ID:            uuid.New(),
				Message:       "Your reservation has been cancelled.",
				UserID:        &res.UserID,
				ReservationID: &res.ID,
			}
			if err := tx.Create(notif).Error; err != nil {
				return err
			}
		}

		if input.Report {
			if res.Status == model.ReservationStatusCancelled {
				return fmt.Errorf("%w: cancelled reservation cannot be reported", booking.ErrConflict)
			}
			if res.ReportCount >= policy.MaxReportAllowed {
				return fmt.Errorf(
					"%w: report limit reached (%d)", booking.ErrConflict, policy.MaxReportAllowed)
			}
			if leadMinutes < policy.MaxReportLeadMinutes {
				return fmt.Errorf(
					"%w: report allowed no later than %d minutes before start",
					booking.ErrConflict, policy.MaxReportLeadMinutes)
			}
			res.ReportCount++
			res.Status = model.ReservationStatusReported

			notif := &model.Notification{
				ID:            uuid.New(),
				Message:       "Your reservation has been reported.",
				UserID:        &res.UserID,
				ReservationID: &res.ID,
			}
			if err := tx.Create(notif).Error; err != nil {
				return err
			}
		}

		if input.CustomerName != nil {
			res.CustomerName = *input.CustomerName
		}

		if input.Window != nil {
			if input.Window.StartTime != nil {
				clock, err := booking.NormalizeClock(*input.Window.StartTime)
				if err != nil {
					return err
				}
				window.StartTime = clock
			}
			if input.Window.Date != nil {
				if _, err := booking.ParseDate(*input.Window.Date); err != nil {
					return err
				}
				window.Date = *input.Window.Date
			}
			if input.Window.Label != nil {
				window.Label = *input.Window.Label
			}
			if err := tx.Save(&window).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(&res).Error; err != nil {
			return err
		}

		summary = &ReservationSummary{
			ID:           res.ID,
			Cancelled:    res.Cancelled,
			Status:       res.Status,
			CustomerName: res.CustomerName,
			Date:         window.Date,
			UserID:       res.UserID,
			TableID:      res.TableID,
			TimeWindowID: res.TimeWindowID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Delete удаляет бронь вместе с её окном. Разрешено только для
// отменённых, завершённых или уже прошедших броней.
func (s *ReservationService) Delete(ctx context.Context, id uuid.UUID, caller booking.Caller) (string, error) {
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res model.Reservation
		if err := repository.ForUpdate(tx).First(&res, "id = ?", id.String()).Error; err != nil {
			return wrapNotFound(err, "reservation %s", id)
		}
		if !caller.CanManage() && caller.UserID != res.UserID {
			return fmt.Errorf("%w: reservation %s belongs to another user", booking.ErrPolicyDenied, id)
		}

		var window model.TimeWindow
		if err := tx.First(&window, "id = ?", res.TimeWindowID).Error; err != nil {
			return wrapNotFound(err, "time window of reservation %s", id)
		}

		_, endAt, err := booking.WindowInstants(window.Date, window.StartTime, window.EndTime)
		if err != nil {
			return err
		}

		deletable := res.Status == model.ReservationStatusCancelled ||
			res.Status == model.ReservationStatusFinished ||
			endAt.Before(now)
		if !deletable {
			return fmt.Errorf(
				"%w: only cancelled, finished or past reservations can be deleted", booking.ErrPolicyDenied)
		}

		// Явная зачистка связей: каскады объявлены на уровне БД,
		// но in-memory тесты внешних ключей не проверяют.
		if err := tx.Model(&res).Association("Dishes").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&model.Notification{}).
			Where("reservation_id = ?", res.ID).
			Update("reservation_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Reservation{}, "id = ?", res.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.TimeWindow{}, "id = ?", window.ID).Error
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Reservation %s deleted", id), nil
}

// GetByID возвращает бронь по идентификатору.
func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id.String())
	if err != nil {
		return nil, wrapNotFound(err, "reservation %s", id)
	}
	return res, nil
}

// ListForUser — брони пользователя, новые сверху.
func (s *ReservationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error) {
	return s.reservations.ListForUser(ctx, userID.String())
}

// ListByRestaurant — брони ресторана по убыванию даты.
func (s *ReservationService) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Reservation, error) {
	return s.reservations.ListByRestaurant(ctx, restaurantID.String())
}

// ListAll — все брони.
func (s *ReservationService) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return s.reservations.ListAll(ctx)
}

// UnavailableTables возвращает столы ресторана, занятые в указанный момент
// неотменёнными бронями. excludeID исключает бронь при редактировании.
func (s *ReservationService) UnavailableTables(
	ctx context.Context,
	restaurantID uuid.UUID,
	date, clock string,
	excludeID uuid.UUID,
) ([]uuid.UUID, error) {
	normalized, err := booking.NormalizeClock(clock)
	if err != nil {
		return nil, err
	}
	if _, err := booking.ParseDate(date); err != nil {
		return nil, err
	}

	exclude := ""
	if excludeID != uuid.Nil {
		exclude = excludeID.String()
	}
	raw, err := s.reservations.UnavailableTableIDs(ctx, restaurantID.String(), date, normalized, exclude)
	if err != nil {
		return nil, err
	}

	out := make([]uuid.UUID, 0, len(raw))
	for _, idStr := range raw {
		parsed, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse table id %q: %w", idStr, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

// AutoFinish завершает активные брони, чьё окно уже закончилось,
// и освобождает их столы. Ошибка одной брони не прерывает проход.
func (s *ReservationService) AutoFinish(ctx context.Context) error {
	active, err := s.reservations.ListByStatus(ctx, model.ReservationStatusActive)
	if err != nil {
		return err
	}

	now := s.now()
	for _, res := range active {
		if res.TimeWindow == nil {
			continue
		}
		_, endAt, err := booking.WindowInstants(res.TimeWindow.Date, res.TimeWindow.StartTime, res.TimeWindow.EndTime)
		if err != nil {
			s.log.Error().Err(err).Str("reservation", res.ID.String()).Msg("auto-finish: bad time window")
			continue
		}
		if endAt.After(now) {
			continue
		}
		noShow, err := s.finishOne(ctx, res.ID)
		if err != nil {
			s.log.Error().Err(err).Str("reservation", res.ID.String()).Msg("auto-finish failed")
			continue
		}
		// Бронь закончилась без единого подтверждения — гость не пришёл.
		if noShow {
			if err := s.users.IncrementNoShow(ctx, res.UserID.String()); err != nil {
				s.log.Error().Err(err).Str("user", res.UserID.String()).Msg("no-show increment failed")
			}
		}
	}
	return nil
}

func (s *ReservationService) finishOne(ctx context.Context, id uuid.UUID) (noShow bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res model.Reservation
		if err := repository.ForUpdate(tx).First(&res, "id = ?", id.String()).Error; err != nil {
			return err
		}
		// Пользовательская мутация могла успеть раньше.
		if res.Status != model.ReservationStatusActive {
			return nil
		}

		if err := tx.Model(&model.Table{}).
			Where("id = ?", res.TableID).
			Update("status", model.TableStatusFree).Error; err != nil {
			return err
		}

		noShow = !res.Confirmed && !res.ConfirmedByCustomer
		res.Status = model.ReservationStatusFinished
		return tx.Save(&res).Error
	})
	if err != nil {
		return false, err
	}
	return noShow, nil
}

// SendReminders отправляет одно напоминание на бронь, не подтверждённую
// гостем, когда до начала остаётся не больше дедлайна из политики.
func (s *ReservationService) SendReminders(ctx context.Context) error {
	policy, err := s.policies.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Msg("reminders: policy config missing, sweep skipped")
			return nil
		}
		return err
	}

	pending, err := s.reservations.ListPendingReminder(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for _, res := range pending {
		if res.TimeWindow == nil {
			continue
		}
		startAt, err := booking.CombineDateTime(res.TimeWindow.Date, res.TimeWindow.StartTime)
		if err != nil {
			s.log.Error().Err(err).Str("reservation", res.ID.String()).Msg("reminders: bad time window")
			continue
		}
		if !startAt.After(now) || booking.MinutesUntil(now, startAt) > policy.ConfirmationDeadlineMinutes {
			continue
		}
		if err := s.remindOne(ctx, res.ID); err != nil {
			s.log.Error().Err(err).Str("reservation", res.ID.String()).Msg("reminder failed")
		}
	}
	return nil
}

func (s *ReservationService) remindOne(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res model.Reservation
		if err := repository.ForUpdate(tx).First(&res, "id = ?", id.String()).Error; err != nil {
			return err
		}
		// Флаг перечитывается под блокировкой: напоминание уходит не больше
		// одного раза даже при параллельных проходах.
		if res.ReminderSent {
			return nil
		}

		var window model.TimeWindow
		if err := tx.First(&window, "id = ?", res.TimeWindowID).Error; err != nil {
			return err
		}
		var user model.User
		if err := tx.First(&user, "id = ?", res.UserID).Error; err != nil {
			return err
		}

		if user.Email != "" {
			msg := mailer.Message{
				To:      user.Email,
				Subject: "Reservation reminder",
				Body: fmt.Sprintf(
					"Hello,\n\nPlease confirm your reservation scheduled on %s at %s.\n"+
						"Without confirmation it will be cancelled automatically.\n\nThank you.",
					window.Date, window.StartTime),
			}
			// Неудача доставки не откатывает мутацию брони.
			if err := s.mail.Send(ctx, msg); err != nil {
				s.log.Error().Err(err).Str("to", user.Email).Msg("reminder mail failed")
			}
		}

		res.ReminderSent = true
		return tx.Save(&res).Error
	})
}

// wrapNotFound переводит gorm.ErrRecordNotFound в ошибку класса NotFound.
func wrapNotFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", booking.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

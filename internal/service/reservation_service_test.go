package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/restobook/reservation-platform/internal/booking"
	"github.com/restobook/reservation-platform/internal/model"
)

func TestReservationService_Create_PersistsReservationWindowAndNotification(t *testing.T) {
	env := newTestEnv(t)

	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	if res.Status != model.ReservationStatusActive {
		t.Fatalf("status = %s, want active", res.Status)
	}
	if res.QRPayload != "Reservation ID: "+res.ID.String() {
		t.Fatalf("qr payload = %q", res.QRPayload)
	}

	var stored model.Reservation
	if err := env.db.First(&stored, "id = ?", res.ID.String()).Error; err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	var window model.TimeWindow
	if err := env.db.First(&window, "id = ?", stored.TimeWindowID.String()).Error; err != nil {
		t.Fatalf("load window: %v", err)
	}
	if window.Date != testDate || window.StartTime != "13:00:00" || window.EndTime != "15:00:00" {
		t.Fatalf("window = %s %s-%s", window.Date, window.StartTime, window.EndTime)
	}

	if n := env.countRows(t, "notifications"); n != 1 {
		t.Fatalf("notifications = %d, want 1", n)
	}
}

func TestReservationService_Create_DerivesEndFromMealWindow(t *testing.T) {
	env := newTestEnv(t)

	// Конец не указан: берётся конец обеденного окна.
	res := env.createReservation(t, env.tableID, "13:00:00", "")

	var window model.TimeWindow
	if err := env.db.First(&window, "id = ?", res.TimeWindowID.String()).Error; err != nil {
		t.Fatalf("load window: %v", err)
	}
	if window.EndTime != "17:00:00" {
		t.Fatalf("end = %s, want 17:00:00", window.EndTime)
	}
}

func TestReservationService_Create_NormalizesShortClock(t *testing.T) {
	env := newTestEnv(t)

	res := env.createReservation(t, env.tableID, "13:00", "15:00")

	var window model.TimeWindow
	if err := env.db.First(&window, "id = ?", res.TimeWindowID.String()).Error; err != nil {
		t.Fatalf("load window: %v", err)
	}
	if window.StartTime != "13:00:00" || window.EndTime != "15:00:00" {
		t.Fatalf("window = %s-%s, want zero-padded seconds", window.StartTime, window.EndTime)
	}
}

func TestReservationService_Create_OverlapConflictLeavesNoPartialWrite(t *testing.T) {
	env := newTestEnv(t)
	env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	_, err := env.svc.Create(context.Background(), CreateReservationInput{
		TableID:      env.tableID,
		CustomerName: "Second",
		Window:       TimeWindowInput{Date: testDate, StartTime: "14:00:00", EndTime: "16:00:00"},
	}, env.userID)
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if n := env.countRows(t, "reservations"); n != 1 {
		t.Fatalf("reservations = %d, want 1", n)
	}
	if n := env.countRows(t, "reservation_times"); n != 1 {
		t.Fatalf("reservation_times = %d, want 1", n)
	}
}

func TestReservationService_Create_SameSlotSecondRequestLosesCleanly(t *testing.T) {
	env := newTestEnv(t)
	env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	// Повтор того же запроса слово в слово: пройти может только один.
	_, err := env.svc.Create(context.Background(), CreateReservationInput{
		TableID:      env.tableID,
		CustomerName: "Guest",
		Phone:        "+100000000",
		Window:       TimeWindowInput{Date: testDate, StartTime: "13:00:00", EndTime: "15:00:00"},
	}, env.userID)
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if n := env.countRows(t, "reservations"); n != 1 {
		t.Fatalf("reservations = %d, want 1", n)
	}
	if n := env.countRows(t, "reservation_times"); n != 1 {
		t.Fatalf("reservation_times = %d, want 1", n)
	}
}

func TestReservationService_Create_TouchingWindowsDoNotConflict(t *testing.T) {
	env := newTestEnv(t)
	env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	// Границы встык: конец одной брони равен началу следующей.
	env.createReservation(t, env.tableID, "15:00:00", "16:00:00")

	if n := env.countRows(t, "reservations"); n != 2 {
		t.Fatalf("reservations = %d, want 2", n)
	}
}

func TestReservationService_Create_CancelledReservationDoesNotBlock(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	if err := env.db.Model(&model.Reservation{}).
		Where("id = ?", res.ID.String()).
		Updates(map[string]any{"cancelled": true, "status": model.ReservationStatusCancelled}).Error; err != nil {
		t.Fatalf("cancel: %v", err)
	}

	env.createReservation(t, env.tableID, "13:30:00", "15:30:00")
}

func TestReservationService_Create_WindowSpanningTwoMealTimesRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), CreateReservationInput{
		TableID:      env.tableID,
		CustomerName: "Guest",
		Window:       TimeWindowInput{Date: testDate, StartTime: "16:00:00", EndTime: "19:00:00"},
	}, env.userID)
	if !errors.Is(err, booking.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReservationService_Create_TooShortRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), CreateReservationInput{
		TableID:      env.tableID,
		CustomerName: "Guest",
		Window:       TimeWindowInput{Date: testDate, StartTime: "13:00:00", EndTime: "13:30:00"},
	}, env.userID)
	if !errors.Is(err, booking.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReservationService_Create_LeadTimeTooLateRejected(t *testing.T) {
	env := newTestEnv(t)

	// 12:30 при "сейчас" 08:00 проходит; сдвигаем "сейчас" к 12:00 —
	// остаётся 30 минут при лимите 60.
	env.svc.now = func() time.Time { return testNow.Add(4 * time.Hour) }

	_, err := env.svc.Create(context.Background(), CreateReservationInput{
		TableID:      env.tableID,
		CustomerName: "Guest",
		Window:       TimeWindowInput{Date: testDate, StartTime: "12:30:00", EndTime: "14:00:00"},
	}, env.userID)
	if !errors.Is(err, booking.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReservationService_Create_DishFromOtherMealWindowRejected(t *testing.T) {
	env := newTestEnv(t)

	dishID := uuid.New()
	if err := env.db.Create(&model.Dish{ID: dishID, Name: "Steak", RestaurantID: &env.restaurantID}).Error; err != nil {
		t.Fatalf("seed dish: %v", err)
	}
	if err := env.db.Create(&model.DishMealTime{DishID: dishID, MealTimeWindowID: env.dinnerID}).Error; err != nil {
		t.Fatalf("seed dish meal time: %v", err)
	}

	_, err := env.svc.Create(context.Background(), CreateReservationInput{
		TableID:      env.tableID,
		CustomerName: "Guest",
		DishIDs:      []uuid.UUID{dishID},
		Window:       TimeWindowInput{Date: testDate, StartTime: "13:00:00", EndTime: "15:00:00"},
	}, env.userID)
	if !errors.Is(err, booking.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReservationService_Create_DishMatchingMealWindowAccepted(t *testing.T) {
	env := newTestEnv(t)

	dishID := uuid.New()
	if err := env.db.Create(&model.Dish{ID: dishID, Name: "Pasta", RestaurantID: &env.restaurantID}).Error; err != nil {
		t.Fatalf("seed dish: %v", err)
	}
	if err := env.db.Create(&model.DishMealTime{DishID: dishID, MealTimeWindowID: env.lunchID}).Error; err != nil {
		t.Fatalf("seed dish meal time: %v", err)
	}

	res, err := env.svc.Create(context.Background(), CreateReservationInput{
		TableID:      env.tableID,
		CustomerName: "Guest",
		DishIDs:      []uuid.UUID{dishID},
		Window:       TimeWindowInput{Date: testDate, StartTime: "13:00:00", EndTime: "15:00:00"},
	}, env.userID)
	if err != nil {
		t.Fatalf("create with dish: %v", err)
	}

	var n int64
	if err := env.db.Table("reservation_dishes").
		Where("reservation_id = ?", res.ID.String()).
		Count(&n).Error; err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if n != 1 {
		t.Fatalf("reservation_dishes = %d, want 1", n)
	}
}

func TestReservationService_Create_UnknownDishRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), CreateReservationInput{
		TableID:      env.tableID,
		CustomerName: "Guest",
		DishIDs:      []uuid.UUID{uuid.New()},
		Window:       TimeWindowInput{Date: testDate, StartTime: "13:00:00", EndTime: "15:00:00"},
	}, env.userID)
	if !errors.Is(err, booking.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReservationService_ConfirmByCode_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	for i := 0; i < 2; i++ {
		got, err := env.svc.ConfirmByCode(context.Background(), res.ID)
		if err != nil {
			t.Fatalf("confirm #%d: %v", i+1, err)
		}
		if !got.Confirmed || got.Status != model.ReservationStatusConfirmed {
			t.Fatalf("confirm #%d: confirmed=%v status=%s", i+1, got.Confirmed, got.Status)
		}
	}
}

func TestReservationService_ConfirmByCustomer_SecondCallConflicts(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	got, err := env.svc.ConfirmByCustomer(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !got.ConfirmedByCustomer || got.Status != model.ReservationStatusConfirmedByCustomer {
		t.Fatalf("confirmed=%v status=%s", got.ConfirmedByCustomer, got.Status)
	}

	if _, err := env.svc.ConfirmByCustomer(context.Background(), res.ID); !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict on second confirm, got %v", err)
	}
}

func TestReservationService_Update_CancelRespectsLeadTime(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	// 12:30: до начала 30 минут при лимите 60.
	env.svc.now = func() time.Time { return testNow.Add(4*time.Hour + 30*time.Minute) }

	caller := booking.Caller{UserID: env.userID, Role: booking.RoleCustomer}
	_, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{Cancel: true}, caller)
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Ровно 60 минут до начала — ещё можно.
	env.svc.now = func() time.Time { return testNow.Add(4 * time.Hour) }
	summary, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{Cancel: true}, caller)
	if err != nil {
		t.Fatalf("cancel at boundary: %v", err)
	}
	if !summary.Cancelled || summary.Status != model.ReservationStatusCancelled {
		t.Fatalf("cancelled=%v status=%s", summary.Cancelled, summary.Status)
	}
}

func TestReservationService_Update_CancelBlockedByNoShowLimit(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	if err := env.db.Model(&model.User{}).
		Where("id = ?", env.userID.String()).
		Update("no_show_count", 3).Error; err != nil {
		t.Fatalf("bump no-shows: %v", err)
	}

	caller := booking.Caller{UserID: env.userID, Role: booking.RoleCustomer}
	_, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{Cancel: true}, caller)
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	var stored model.Reservation
	if err := env.db.First(&stored, "id = ?", res.ID.String()).Error; err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	if stored.Cancelled {
		t.Fatalf("reservation cancelled despite no-show limit")
	}
}

func TestReservationService_Update_ReportLimit(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")
	caller := booking.Caller{UserID: env.userID, Role: booking.RoleCustomer}

	for i := 0; i < 2; i++ {
		summary, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{Report: true}, caller)
		if err != nil {
			t.Fatalf("report #%d: %v", i+1, err)
		}
		if summary.Status != model.ReservationStatusReported {
			t.Fatalf("report #%d: status = %s", i+1, summary.Status)
		}
	}

	_, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{Report: true}, caller)
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict on third report, got %v", err)
	}

	var stored model.Reservation
	if err := env.db.First(&stored, "id = ?", res.ID.String()).Error; err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	if stored.ReportCount != 2 {
		t.Fatalf("report count = %d, want 2", stored.ReportCount)
	}
}

func TestReservationService_Update_ReportOnCancelledConflicts(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")
	caller := booking.Caller{UserID: env.userID, Role: booking.RoleCustomer}

	if _, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{Cancel: true}, caller); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{Report: true}, caller)
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReservationService_Update_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	stranger := uuid.New()
	if err := env.db.Create(&model.User{ID: stranger, Email: "other@example.com", Name: "Other"}).Error; err != nil {
		t.Fatalf("seed stranger: %v", err)
	}

	name := "Hijacked"
	_, err := env.svc.Update(context.Background(), res.ID,
		UpdateReservationInput{CustomerName: &name},
		booking.Caller{UserID: stranger, Role: booking.RoleCustomer})
	if !errors.Is(err, booking.ErrPolicyDenied) {
		t.Fatalf("expected policy denial, got %v", err)
	}

	// Персонал может менять чужие брони.
	summary, err := env.svc.Update(context.Background(), res.ID,
		UpdateReservationInput{CustomerName: &name},
		booking.Caller{UserID: stranger, Role: booking.RoleStaff})
	if err != nil {
		t.Fatalf("staff update: %v", err)
	}
	if summary.CustomerName != name {
		t.Fatalf("customer name = %q, want %q", summary.CustomerName, name)
	}
}

func TestReservationService_Update_TableReassignmentChecksConflicts(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	other := env.addTable(t, "T2")
	env.createReservation(t, other, "14:00:00", "16:00:00")

	caller := booking.Caller{UserID: env.userID, Role: booking.RoleCustomer}
	_, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{TableID: &other}, caller)
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	free := env.addTable(t, "T3")
	summary, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{TableID: &free}, caller)
	if err != nil {
		t.Fatalf("reassign to free table: %v", err)
	}
	if summary.TableID != free {
		t.Fatalf("table = %s, want %s", summary.TableID, free)
	}
}

func TestReservationService_Delete_OnlyCancelledFinishedOrPast(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")
	caller := booking.Caller{UserID: env.userID, Role: booking.RoleCustomer}

	_, err := env.svc.Delete(context.Background(), res.ID, caller)
	if !errors.Is(err, booking.ErrPolicyDenied) {
		t.Fatalf("expected policy denial for active future reservation, got %v", err)
	}

	if _, err := env.svc.Update(context.Background(), res.ID, UpdateReservationInput{Cancel: true}, caller); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := env.svc.Delete(context.Background(), res.ID, caller); err != nil {
		t.Fatalf("delete cancelled: %v", err)
	}

	if n := env.countRows(t, "reservations"); n != 0 {
		t.Fatalf("reservations = %d, want 0", n)
	}
	if n := env.countRows(t, "reservation_times"); n != 0 {
		t.Fatalf("reservation_times = %d, want 0", n)
	}

	// Уведомления переживают бронь, но теряют ссылку на неё.
	var dangling int64
	if err := env.db.Table("notifications").
		Where("reservation_id IS NOT NULL").
		Count(&dangling).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if dangling != 0 {
		t.Fatalf("dangling notification references = %d", dangling)
	}
}

func TestReservationService_AutoFinish_FinishesPastAndFreesTable(t *testing.T) {
	env := newTestEnv(t)
	past := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	other := env.addTable(t, "T2")
	future := env.createReservation(t, other, "18:00:00", "20:00:00")

	if err := env.db.Model(&model.Table{}).
		Where("id = ?", env.tableID.String()).
		Update("status", model.TableStatusReserved).Error; err != nil {
		t.Fatalf("mark table reserved: %v", err)
	}

	// 16:00: обеденная бронь уже закончилась, ужин ещё впереди.
	env.svc.now = func() time.Time { return testNow.Add(8 * time.Hour) }
	if err := env.svc.AutoFinish(context.Background()); err != nil {
		t.Fatalf("auto finish: %v", err)
	}

	var finished, untouched model.Reservation
	if err := env.db.First(&finished, "id = ?", past.ID.String()).Error; err != nil {
		t.Fatalf("load past: %v", err)
	}
	if err := env.db.First(&untouched, "id = ?", future.ID.String()).Error; err != nil {
		t.Fatalf("load future: %v", err)
	}
	if finished.Status != model.ReservationStatusFinished {
		t.Fatalf("past status = %s, want finished", finished.Status)
	}
	if untouched.Status != model.ReservationStatusActive {
		t.Fatalf("future status = %s, want active", untouched.Status)
	}

	var table model.Table
	if err := env.db.First(&table, "id = ?", env.tableID.String()).Error; err != nil {
		t.Fatalf("load table: %v", err)
	}
	if table.Status != model.TableStatusFree {
		t.Fatalf("table status = %s, want free", table.Status)
	}

	// Бронь прошла без подтверждений — неявка записана гостю.
	var user model.User
	if err := env.db.First(&user, "id = ?", env.userID.String()).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.NoShowCount != 1 {
		t.Fatalf("no-show count = %d, want 1", user.NoShowCount)
	}
}

func TestReservationService_AutoFinish_ConfirmedGuestIsNotNoShow(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	if _, err := env.svc.ConfirmByCode(context.Background(), res.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// Статус после подтверждения не active, но окно уже прошло:
	// завершение касается только активных броней.
	env.svc.now = func() time.Time { return testNow.Add(8 * time.Hour) }
	if err := env.svc.AutoFinish(context.Background()); err != nil {
		t.Fatalf("auto finish: %v", err)
	}

	var user model.User
	if err := env.db.First(&user, "id = ?", env.userID.String()).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.NoShowCount != 0 {
		t.Fatalf("no-show count = %d, want 0", user.NoShowCount)
	}
}

func TestReservationService_SendReminders_OncePerReservation(t *testing.T) {
	env := newTestEnv(t)
	res := env.createReservation(t, env.tableID, "13:00:00", "15:00:00")

	other := env.addTable(t, "T2")
	env.createReservation(t, other, "18:00:00", "20:00:00")

	// 11:30: до обеда 90 минут (в пределах дедлайна 120), до ужина — 390.
	env.svc.now = func() time.Time { return testNow.Add(3*time.Hour + 30*time.Minute) }

	for i := 0; i < 2; i++ {
		if err := env.svc.SendReminders(context.Background()); err != nil {
			t.Fatalf("send reminders #%d: %v", i+1, err)
		}
	}

	if got := env.mail.count(); got != 1 {
		t.Fatalf("mails sent = %d, want 1", got)
	}

	var stored model.Reservation
	if err := env.db.First(&stored, "id = ?", res.ID.String()).Error; err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	if !stored.ReminderSent {
		t.Fatalf("reminder_sent not set")
	}
}

func TestReservationService_UnavailableTables(t *testing.T) {
	env := newTestEnv(t)
	env.createReservation(t, env.tableID, "13:00:00", "15:00:00")
	env.addTable(t, "T2")

	busy, err := env.svc.UnavailableTables(context.Background(), env.restaurantID, testDate, "13:30:00", uuid.Nil)
	if err != nil {
		t.Fatalf("unavailable at 13:30: %v", err)
	}
	if len(busy) != 1 || busy[0] != env.tableID {
		t.Fatalf("busy = %v, want [%s]", busy, env.tableID)
	}

	free, err := env.svc.UnavailableTables(context.Background(), env.restaurantID, testDate, "11:00:00", uuid.Nil)
	if err != nil {
		t.Fatalf("unavailable at 11:00: %v", err)
	}
	if len(free) != 0 {
		t.Fatalf("busy at 11:00 = %v, want none", free)
	}
}

func TestReservationService_GetByID_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

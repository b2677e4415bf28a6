package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/mailer"
	"github.com/restobook/reservation-platform/internal/model"
	"github.com/restobook/reservation-platform/internal/repository"
)

// recordingMailer копит отправленные письма вместо доставки.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	db   *gorm.DB
	svc  *ReservationService
	mail *recordingMailer

	restaurantID uuid.UUID
	blocID       uuid.UUID
	tableID      uuid.UUID
	userID       uuid.UUID
	lunchID      uuid.UUID
	dinnerID     uuid.UUID
}

// Фиксированный момент «сейчас» для детерминированных проверок сроков.
var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)

const testDate = "2026-03-10"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Минимальная схема под логику запросов (sqlite-friendly).
	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL,
			last_name TEXT,
			phone TEXT,
			no_show_count INTEGER NOT NULL DEFAULT 0,
			contract_start DATE,
			restaurant_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE restaurants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT,
			hourly TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE blocs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE restaurant_blocs (
			id TEXT PRIMARY KEY,
			restaurant_id TEXT NOT NULL,
			bloc_id TEXT NOT NULL,
			max_tables INTEGER NOT NULL DEFAULT 0,
			max_seats INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE tables (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			num_seats INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'free',
			row INTEGER NOT NULL DEFAULT 0,
			col INTEGER NOT NULL DEFAULT 0,
			shape TEXT,
			restaurant_bloc_id TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE meal_time_windows (
			id TEXT PRIMARY KEY,
			restaurant_id TEXT NOT NULL,
			meal_type TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE dishes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			price REAL NOT NULL DEFAULT 0,
			restaurant_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE dish_meal_times (
			dish_id TEXT NOT NULL,
			meal_time_window_id TEXT NOT NULL,
			created_at DATETIME,
			PRIMARY KEY (dish_id, meal_time_window_id)
		);`,
		`CREATE TABLE reservation_times (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			label TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE reservations (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			customer_name TEXT,
			phone TEXT,
			time_window_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'active',
			confirmed BOOLEAN NOT NULL DEFAULT 0,
			confirmed_by_customer BOOLEAN NOT NULL DEFAULT 0,
			cancelled BOOLEAN NOT NULL DEFAULT 0,
			report_count INTEGER NOT NULL DEFAULT 0,
			reminder_sent BOOLEAN NOT NULL DEFAULT 0,
			qr_payload TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE reservation_dishes (
			reservation_id TEXT NOT NULL,
			dish_id TEXT NOT NULL,
			PRIMARY KEY (reservation_id, dish_id)
		);`,
		`CREATE TABLE notifications (
			id TEXT PRIMARY KEY,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			user_id TEXT,
			reservation_id TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE system_config (
			id TEXT PRIMARY KEY,
			max_cancel_lead_minutes INTEGER NOT NULL DEFAULT 60,
			max_report_lead_minutes INTEGER NOT NULL DEFAULT 60,
			max_report_allowed INTEGER NOT NULL DEFAULT 2,
			max_no_show_allowed INTEGER NOT NULL DEFAULT 3,
			confirmation_deadline_minutes INTEGER NOT NULL DEFAULT 120,
			created_at DATETIME,
			updated_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

// newTestEnv поднимает in-memory БД с рестораном, залом, столом,
// гостем, политиками и двумя окнами (LUNCH 12-17, DINNER 18-23).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := openTestDB(t)

	env := &testEnv{
		db:           db,
		mail:         &recordingMailer{},
		restaurantID: uuid.New(),
		blocID:       uuid.New(),
		tableID:      uuid.New(),
		userID:       uuid.New(),
		lunchID:      uuid.New(),
		dinnerID:     uuid.New(),
	}

	blocID := uuid.New()
	seed := []any{
		&model.Restaurant{ID: env.restaurantID, Name: "La Pergola", Hourly: "8-23"},
		&model.Bloc{ID: blocID, Name: "Main hall"},
		&model.RestaurantBloc{ID: env.blocID, RestaurantID: env.restaurantID, BlocID: blocID, MaxTables: 20, MaxSeats: 80},
		&model.Table{ID: env.tableID, Name: "T1", NumSeats: 4, Status: model.TableStatusFree, RestaurantBlocID: env.blocID},
		&model.User{ID: env.userID, Email: "guest@example.com", Name: "Guest"},
		&model.MealTimeWindow{ID: env.lunchID, RestaurantID: env.restaurantID, MealType: model.MealTypeLunch, StartTime: "12:00:00", EndTime: "17:00:00", IsActive: true},
		&model.MealTimeWindow{ID: env.dinnerID, RestaurantID: env.restaurantID, MealType: model.MealTypeDinner, StartTime: "18:00:00", EndTime: "23:00:00", IsActive: true},
		&model.PolicyConfig{
			ID:                          uuid.New(),
			MaxCancelLeadMinutes:        60,
			MaxReportLeadMinutes:        60,
			MaxReportAllowed:            2,
			MaxNoShowAllowed:            3,
			ConfirmationDeadlineMinutes: 120,
		},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	env.svc = NewReservationService(
		db,
		repository.NewGormReservationRepository(db),
		repository.NewGormTableRepository(db),
		repository.NewGormUserRepository(db),
		repository.NewGormDishRepository(db),
		repository.NewGormMealTimeRepository(db),
		repository.NewGormPolicyRepository(db),
		repository.NewGormNotificationRepository(db),
		env.mail,
		zerolog.Nop(),
	)
	env.svc.now = func() time.Time { return testNow }
	return env
}

// createReservation создаёт бронь указанного стола на заданные часы.
func (e *testEnv) createReservation(t *testing.T, tableID uuid.UUID, start, end string) *model.Reservation {
	t.Helper()

	res, err := e.svc.Create(context.Background(), CreateReservationInput{
		TableID:      tableID,
		CustomerName: "Guest",
		Phone:        "+100000000",
		Window: TimeWindowInput{
			Date:      testDate,
			StartTime: start,
			EndTime:   end,
		},
	}, e.userID)
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return res
}

func (e *testEnv) addTable(t *testing.T, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	err := e.db.Create(&model.Table{
		ID: id, Name: name, NumSeats: 2,
		Status: model.TableStatusFree, RestaurantBlocID: e.blocID,
	}).Error
	if err != nil {
		t.Fatalf("seed table: %v", err)
	}
	return id
}

func (e *testEnv) countRows(t *testing.T, table string) int64 {
	t.Helper()

	var n int64
	if err := e.db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

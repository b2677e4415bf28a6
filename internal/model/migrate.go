package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей движка резервирования.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Dish{}, "MealTimes", &DishMealTime{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&User{},
		&Restaurant{},
		&Bloc{},
		&RestaurantBloc{},
		&Table{},
		&MealTimeWindow{},
		&Dish{},
		&DishMealTime{},
		&TimeWindow{},
		&Reservation{},
		&PolicyConfig{},
		&Notification{},
	)
}

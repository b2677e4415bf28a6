package booking

import "errors"

// Классы ошибок движка. Сервисы заворачивают их через fmt.Errorf("%w: ..."),
// вызывающая сторона ветвится по errors.Is.
var (
	// Сущность не найдена по идентификатору.
	ErrNotFound = errors.New("not found")

	// Входные данные некорректны; повтор без изменения запроса бессмыслен.
	ErrValidation = errors.New("validation failed")

	// Состояние изменилось под вызывающим: пересечение броней,
	// повторное подтверждение, исчерпанные лимиты отмен/переносов.
	ErrConflict = errors.New("conflict")

	// Операция запрещена политикой (например, удаление незавершённой брони).
	ErrPolicyDenied = errors.New("denied by policy")
)

package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"

	// Минут в сутках; используется при переходе окон через полночь.
	minutesPerDay = 24 * 60
)

// ParseClock разбирает время суток вида "HH:MM" или "HH:MM:SS"
// в минуты от полуночи. Секунды отбрасываются; хвост после значения —
// ошибка, а не игнорируемый мусор.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: malformed clock value %q", ErrValidation, s)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: malformed clock value %q", ErrValidation, s)
		}
		nums[i] = v
	}

	h, m := nums[0], nums[1]
	sec := 0
	if len(nums) == 3 {
		sec = nums[2]
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("%w: clock value %q out of range", ErrValidation, s)
	}
	return h*60 + m, nil
}

// NormalizeClock приводит время суток к каноничному виду "HH:MM:SS",
// чтобы строковые сравнения в SQL были корректны.
func NormalizeClock(s string) (string, error) {
	minutes, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(minutes), nil
}

// FormatClock — обратная операция к ParseClock.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// ParseDate разбирает календарную дату "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q", ErrValidation, s)
	}
	return d, nil
}

// CombineDateTime собирает момент времени из даты и времени суток.
func CombineDateTime(date, clock string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(minutes) * time.Minute), nil
}

// WindowInstants возвращает моменты начала и конца окна брони.
// Если конец раньше начала, окно трактуется как переходящее через полночь
// и конец сдвигается на следующий день.
func WindowInstants(date, startClock, endClock string) (start, end time.Time, err error) {
	start, err = CombineDateTime(date, startClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = CombineDateTime(date, endClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// MinutesUntil — целое число минут от now до t (пол, как в расчёте lead time).
func MinutesUntil(now, t time.Time) int {
	d := t.Sub(now)
	minutes := int(d / time.Minute)
	if d < 0 && d%time.Minute != 0 {
		minutes--
	}
	return minutes
}

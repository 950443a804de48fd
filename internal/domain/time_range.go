package domain

import (
	"errors"
	"time"
)

var ErrInvalidTimeRange = errors.New("time range end must be after start")

// TimeRange é um intervalo semiaberto [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewTimeRange(start, end time.Time) (TimeRange, error) {
	tr := TimeRange{Start: start.UTC(), End: end.UTC()}
	return tr, tr.Validate()
}

// LastDays devolve a janela de n dias que termina em end.
func LastDays(end time.Time, days int) TimeRange {
	end = end.UTC()
	return TimeRange{Start: end.AddDate(0, 0, -days), End: end}
}

func (tr TimeRange) Validate() error {
	if !tr.End.After(tr.Start) {
		return ErrInvalidTimeRange
	}
	return nil
}

func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// ResolveWindow converte datas de calendário inclusivas em uma janela semiaberta.
// Sem end, a janela termina em today; sem start, cobre defaultDays até end.
func ResolveWindow(start, end *time.Time, defaultDays int, today time.Time) (TimeRange, error) {
	endExclusive := startOfDayUTC(today)
	if end != nil {
		endExclusive = startOfDayUTC(*end).AddDate(0, 0, 1)
	}

	if start == nil {
		return LastDays(endExclusive, defaultDays), nil
	}
	return NewTimeRange(startOfDayUTC(*start), endExclusive)
}

func startOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

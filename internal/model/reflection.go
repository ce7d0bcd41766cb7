package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/iaa/internal/dates"
)

// Reflection is the end-of-day memo, unique per (UserID, Date).
type Reflection struct {
	ID        string
	UserID    string
	Date      string
	Memo      string
	Todos     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Reflection) Validate() error {
	if !dates.IsDateKey(r.Date) {
		return fmt.Errorf("model: reflection date: %w", dates.ErrInvalidDateKey)
	}
	return nil
}

// RestoredTasks rebuilds task items from saved todo texts. Completion is not stored.
func (r Reflection) RestoredTasks(newID func() string) []TaskItem {
	out := make([]TaskItem, 0, len(r.Todos))
	for _, text := range r.Todos {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out = append(out, TaskItem{ID: newID(), Text: text, Date: r.Date})
	}
	return out
}

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sandeepkv93/iaa/internal/model"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("export: unknown format")

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "txt"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatJSON, FormatYAML, FormatText, FormatXLSX:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

type taskRecord struct {
	ID        string `json:"id" yaml:"id"`
	Date      string `json:"date" yaml:"date"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
	GoalID    string `json:"goalId,omitempty" yaml:"goal_id,omitempty"`
}

// sorted orders by date, keeping list order within a day.
func sorted(items []model.TaskItem) []model.TaskItem {
	out := make([]model.TaskItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func records(items []model.TaskItem) []taskRecord {
	out := make([]taskRecord, 0, len(items))
	for _, it := range sorted(items) {
		out = append(out, taskRecord{ID: it.ID, Date: it.Date, Text: it.Text, Completed: it.Completed, GoalID: it.GoalID})
	}
	return out
}

// Write renders tasks to w. XLSX needs a file path; use WriteXLSX.
func Write(w io.Writer, format Format, items []model.TaskItem) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records(items))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(items)); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		return writeText(w, items)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeText(w io.Writer, items []model.TaskItem) error {
	current := ""
	for i, it := range sorted(items) {
		if it.Date != current {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			current = it.Date
			if _, err := fmt.Fprintf(w, "%s\n", current); err != nil {
				return err
			}
		}
		mark := " "
		if it.Completed {
			mark = "x"
		}
		if _, err := fmt.Fprintf(w, "- [%s] %s\n", mark, it.Text); err != nil {
			return err
		}
	}
	return nil
}

var xlsxHeader = []string{"Date", "Task", "Completed", "Goal ID", "ID"}

func WriteXLSX(path string, items []model.TaskItem) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, title := range xlsxHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}
	for i, it := range sorted(items) {
		row := []any{it.Date, it.Text, it.Completed, it.GoalID, it.ID}
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

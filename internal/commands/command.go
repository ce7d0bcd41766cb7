package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/iaa/internal/dates"
	"github.com/sandeepkv93/iaa/internal/model"
)

type Type string

const (
	TypeGoal     Type = "goal"
	TypeAdd      Type = "add"
	TypeDone     Type = "done"
	TypeGenerate Type = "generate"
	TypeReflect  Type = "reflect"
	TypeDate     Type = "date"
	TypeKey      Type = "key"
	TypeChat     Type = "chat"
	TypeStatus   Type = "status"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type GoalArgs struct {
	Duration model.GoalDuration
	Title    string
}

type AddArgs struct {
	Text string
}

// DoneArgs holds a 1-based position in the visible task list.
type DoneArgs struct {
	Index int
}

// GenerateArgs holds an optional 1-based goal position; 0 means the selected goal.
type GenerateArgs struct {
	GoalIndex int
}

type ReflectArgs struct {
	Memo string
}

// DateArgs holds a resolved date key or one of the relative words today/tomorrow/yesterday.
type DateArgs struct {
	Date     string
	Relative string
}

type KeyArgs struct {
	APIKey string
}

type ChatArgs struct {
	Message string
}

type StatusArgs struct {
	GoalIndex int
	Status    model.GoalStatus
}

type Command struct {
	Type     Type
	Raw      string
	Goal     *GoalArgs
	Add      *AddArgs
	Done     *DoneArgs
	Generate *GenerateArgs
	Reflect  *ReflectArgs
	Date     *DateArgs
	Key      *KeyArgs
	Chat     *ChatArgs
	Status   *StatusArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeGoal:
		return parseGoal(input, args)
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeGenerate:
		return parseGenerate(input, args)
	case TypeReflect:
		return parseReflect(input, args)
	case TypeDate:
		return parseDate(input, args)
	case TypeKey:
		return parseKey(input, args)
	case TypeChat:
		return parseChat(input, args)
	case TypeStatus:
		return parseStatus(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func invalid(format string, a ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, a...)}
}

// parseGoal accepts "<duration> <title>" where the duration may be one or two words ("3 months").
func parseGoal(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("goal requires a duration and a title")
	}
	consumed := 1
	duration, err := model.ParseGoalDuration(args[0])
	if err != nil && len(args) >= 3 {
		duration, err = model.ParseGoalDuration(args[0] + args[1])
		consumed = 2
	}
	if err != nil {
		return Command{}, invalid("unknown duration %q (use 1month, 3months, 6months or 1year)", args[0])
	}
	title := strings.TrimSpace(strings.Join(args[consumed:], " "))
	if title == "" {
		return Command{}, invalid("goal requires a title")
	}
	return Command{Type: TypeGoal, Raw: raw, Goal: &GoalArgs{Duration: duration, Title: title}}, nil
}

func parseAdd(raw string, args []string) (Command, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return Command{}, invalid("add requires task text")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: text}}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("done requires a task number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Command{}, invalid("done requires a positive task number, got %q", args[0])
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Index: n}}, nil
}

func parseGenerate(raw string, args []string) (Command, error) {
	out := GenerateArgs{}
	if len(args) > 1 {
		return Command{}, invalid("generate takes at most one goal number")
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Command{}, invalid("generate expects a goal number, got %q", args[0])
		}
		out.GoalIndex = n
	}
	return Command{Type: TypeGenerate, Raw: raw, Generate: &out}, nil
}

func parseReflect(raw string, args []string) (Command, error) {
	memo := strings.TrimSpace(strings.Join(args, " "))
	if memo == "" {
		return Command{}, invalid("reflect requires a memo")
	}
	return Command{Type: TypeReflect, Raw: raw, Reflect: &ReflectArgs{Memo: memo}}, nil
}

func parseDate(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("date requires YYYY-MM-DD, today, tomorrow or yesterday")
	}
	arg := strings.ToLower(args[0])
	switch arg {
	case "today", "tomorrow", "yesterday":
		return Command{Type: TypeDate, Raw: raw, Date: &DateArgs{Relative: arg}}, nil
	}
	if !dates.IsDateKey(arg) {
		return Command{}, invalid("invalid date %q", args[0])
	}
	return Command{Type: TypeDate, Raw: raw, Date: &DateArgs{Date: arg}}, nil
}

func parseKey(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("key requires exactly one api key")
	}
	return Command{Type: TypeKey, Raw: raw, Key: &KeyArgs{APIKey: args[0]}}, nil
}

func parseChat(raw string, args []string) (Command, error) {
	msg := strings.TrimSpace(strings.Join(args, " "))
	if msg == "" {
		return Command{}, invalid("chat requires a message")
	}
	return Command{Type: TypeChat, Raw: raw, Chat: &ChatArgs{Message: msg}}, nil
}

func parseStatus(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("status requires a goal number and active, paused or completed")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Command{}, invalid("status expects a goal number, got %q", args[0])
	}
	status := model.GoalStatus(strings.ToLower(args[1]))
	if !status.IsValid() {
		return Command{}, invalid("unknown goal status %q", args[1])
	}
	return Command{Type: TypeStatus, Raw: raw, Status: &StatusArgs{GoalIndex: n, Status: status}}, nil
}

// ResolveDate turns relative date words into a key based on today.
func (a DateArgs) ResolveDate(today string) (string, error) {
	switch a.Relative {
	case "today":
		return today, nil
	case "tomorrow":
		return dates.AddDays(today, 1)
	case "yesterday":
		return dates.AddDays(today, -1)
	default:
		return a.Date, nil
	}
}

package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Goal     func(GoalArgs) (Result, error)
	Add      func(AddArgs) (Result, error)
	Done     func(DoneArgs) (Result, error)
	Generate func(GenerateArgs) (Result, error)
	Reflect  func(ReflectArgs) (Result, error)
	Date     func(DateArgs) (Result, error)
	Key      func(KeyArgs) (Result, error)
	Chat     func(ChatArgs) (Result, error)
	Status   func(StatusArgs) (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeGoal:
		if handlers.Goal == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Goal(*cmd.Goal)
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Done)
	case TypeGenerate:
		if handlers.Generate == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Generate(*cmd.Generate)
	case TypeReflect:
		if handlers.Reflect == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Reflect(*cmd.Reflect)
	case TypeDate:
		if handlers.Date == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Date(*cmd.Date)
	case TypeKey:
		if handlers.Key == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Key(*cmd.Key)
	case TypeChat:
		if handlers.Chat == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Chat(*cmd.Chat)
	case TypeStatus:
		if handlers.Status == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Status(*cmd.Status)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

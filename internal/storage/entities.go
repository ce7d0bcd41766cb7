package storage

import "github.com/sandeepkv93/iaa/internal/model"

type GoalListFilter struct {
	UserID string
	Status model.GoalStatus
	Limit  int
	Offset int
}

type ReflectionListFilter struct {
	UserID string
	From   string
	To     string
	Limit  int
	Offset int
}

package domain

import "errors"

var (
	// ErrJobNotFound - задачи нет или она вытеснена по retention
	ErrJobNotFound = errors.New("area job not found")

	// ErrJobAlreadyTerminal - повторный переход из конечного состояния
	ErrJobAlreadyTerminal = errors.New("area job already in terminal state")

	// ErrJobStoreFull - достигнут лимит задач, а вытеснять нечего (все pending)
	ErrJobStoreFull = errors.New("area job store is full")
)

package domain

import "errors"

var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrEditConflict          = errors.New("edit conflict")
	ErrInvalidPlan           = errors.New("invalid installment plan")
	ErrDuplicateNotification = errors.New("notification already sent")
	ErrExperienceNotFound    = errors.New("experience not found")
)

package http

import "time"

type createCycleRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"max=2000"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

type updateCycleRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"max=2000"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

type addParticipantsRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,required,entity_id,max=100"`
}

type addRespondentsRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,required,entity_id,max=100"`
}

type submitResponseRequest struct {
	QuestionID string  `json:"question_id" validate:"required,entity_id,max=100"`
	Score      int     `json:"score"`
	Comment    *string `json:"comment" validate:"omitempty,max=2000"`
}

package eventstore

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/daybook/internal/apperr"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
)

// Field messages reported by Validate.
const (
	MsgTitleRequired   = "title required"
	MsgDateRequired    = "date required"
	MsgInvalidStart    = "invalid start time"
	MsgInvalidEnd      = "invalid end time"
	MsgEndBeforeStart  = "end must be after start"
	MsgInvalidCategory = "invalid category"
)

var categoryValues = func() []any {
	out := make([]any, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = c
	}
	return out
}()

// Normalize trims free text and fills the default category.
func Normalize(in models.EventInput) models.EventInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	if in.Category == "" {
		in.Category = models.CategoryPersonal
	}
	return in
}

// Validate checks a normalized form payload. requireDate is false for
// updates, which keep the stored day when no date is submitted.
func Validate(in models.EventInput, requireDate bool) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error(MsgTitleRequired)),
		validation.Field(&in.Date, validation.When(requireDate, validation.Required.Error(MsgDateRequired))),
		validation.Field(&in.StartTime,
			validation.Required.Error(MsgInvalidStart),
			validation.By(timeFormat(MsgInvalidStart)),
		),
		validation.Field(&in.EndTime,
			validation.Required.Error(MsgInvalidEnd),
			validation.By(timeFormat(MsgInvalidEnd)),
			validation.By(endAfter(in.StartTime)),
		),
		validation.Field(&in.Category, validation.In(categoryValues...).Error(MsgInvalidCategory)),
	)
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		ve := &apperr.ValidationError{}
		for name, ferr := range fields {
			ve.Add(name, ferr.Error())
		}
		return ve
	}
	return err
}

func timeFormat(msg string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if !grid.IsValidTimeFormat(s) {
			return errors.New(msg)
		}
		return nil
	}
}

func endAfter(start string) validation.RuleFunc {
	return func(value any) error {
		end, _ := value.(string)
		if !grid.IsValidTimeFormat(start) {
			return nil
		}
		if grid.CompareTime(start, end) >= 0 {
			return errors.New(MsgEndBeforeStart)
		}
		return nil
	}
}

package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"stayworks/internal/interval"
	"stayworks/pkg/logger"
	"stayworks/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type StayValidator struct {
	validate      *validator.Validate
	logger        *logger.Logger
	minStayNights int
}

func NewStayValidator(log *logger.Logger, minStayNights int) *StayValidator {
	v := validator.New()

	log.Info("Stay validator initialized successfully")

	return &StayValidator{
		validate:      v,
		logger:        log,
		minStayNights: minStayNights,
	}
}

// Validate checks a stay request's struct tags and then the journey shape:
// every segment a valid non-empty day range, segments ordered by start date
// and contiguous or overlapping with no gaps, and enough distinct nights to
// meet the minimum stay.
func (v *StayValidator) Validate(request *model.StayRequest) error {
	if err := v.validate.Struct(request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	totalNights := 0
	var coveredUntil time.Time
	for i, seg := range request.Segments {
		r := interval.New(seg.StartDate, seg.EndDate)
		if r.IsEmpty() {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("Segments[%d]", i),
					Message: "end_date must be after start_date",
				},
			}
		}

		if i > 0 {
			prev := interval.New(request.Segments[i-1].StartDate, request.Segments[i-1].EndDate)
			if r.Start.Before(prev.Start) {
				return ValidationErrors{
					ValidationError{
						Field:   fmt.Sprintf("Segments[%d]", i),
						Message: "segments must be ordered by start_date",
					},
				}
			}
			if r.Start.After(coveredUntil) {
				return ValidationErrors{
					ValidationError{
						Field:   fmt.Sprintf("Segments[%d]", i),
						Message: fmt.Sprintf("segments must not leave a gap: coverage ends %s, next segment starts %s", coveredUntil.Format("2006-01-02"), r.Start.Format("2006-01-02")),
					},
				}
			}
			if seg.ResourceID == request.Segments[i-1].ResourceID {
				return ValidationErrors{
					ValidationError{
						Field:   fmt.Sprintf("Segments[%d]", i),
						Message: "touching segments on the same resource must be merged into one",
					},
				}
			}
		}

		// Overlapping nights count once toward the journey length.
		effective := r.Start
		if effective.Before(coveredUntil) {
			effective = coveredUntil
		}
		if r.End.After(coveredUntil) {
			totalNights += interval.New(effective, r.End).Days()
			coveredUntil = r.End
		}
	}

	if totalNights < v.minStayNights {
		return ValidationErrors{
			ValidationError{
				Field:   "Segments",
				Message: fmt.Sprintf("total stay length (%d nights) is below the minimum of %d nights", totalNights, v.minStayNights),
			},
		}
	}

	return nil
}

func (v *StayValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

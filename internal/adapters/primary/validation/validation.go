package validation

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lorrc/workload-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"github.com/lorrc/workload-dashboard/internal/core/ports"
)

// WorkloadQuery is the raw selection sent by the dashboard, either as URL
// query parameters or as a websocket payload.
type WorkloadQuery struct {
	Assignee string `json:"assignee" validate:"omitempty,max=128,excluded_with=Group"`
	Group    string `json:"group" validate:"omitempty,max=255"`
	GroupBy  string `json:"groupBy" validate:"omitempty,oneof=project employee project_employee"`
	Start    string `json:"start" validate:"omitempty,due-date"`
	End      string `json:"end" validate:"omitempty,due-date"`
	Seq      int64  `json:"seq" validate:"gte=0"`
}

var messages = map[string]string{
	"excluded_with": apperrors.ErrAmbiguousSelect.Error(),
	"oneof":         apperrors.ErrInvalidGroupBy.Error(),
	"due-date":      apperrors.ErrInvalidDate.Error() + ", expected YYYY-MM-DD",
	"gte":           "Must not be negative",
	"max":           "Value is too long",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("due-date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateLayout, fl.Field().String())
		return err == nil
	}); err != nil {
		panic("failed to register due-date validation: " + err.Error())
	}
	return v
}

// QueryFromValues reads a WorkloadQuery from URL query parameters.
// A malformed seq is reported by Validate.
func QueryFromValues(values url.Values) (WorkloadQuery, error) {
	q := WorkloadQuery{
		Assignee: strings.TrimSpace(values.Get("assignee")),
		Group:    strings.TrimSpace(values.Get("group")),
		GroupBy:  strings.TrimSpace(values.Get("groupBy")),
		Start:    strings.TrimSpace(values.Get("start")),
		End:      strings.TrimSpace(values.Get("end")),
	}

	if raw := values.Get("seq"); raw != "" {
		seq, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs := apperrors.NewValidationErrors()
			errs.Add("seq", "Must be an integer")
			return q, errs
		}
		q.Seq = seq
	}

	return q, nil
}

// Validate checks the query and converts it into a service request.
// An empty groupBy defaults to grouping by project.
func (q WorkloadQuery) Validate() (ports.WorkloadRequest, error) {
	v := NewValidator()

	if err := validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ports.WorkloadRequest{}, err
		}
		for _, fe := range fieldErrs {
			v.errors.Add(fe.Field(), messageFor(fe))
		}
	}

	start, _ := domain.ParseDueDate(q.Start)
	end, _ := domain.ParseDueDate(q.End)
	due := domain.DueRange{Start: start, End: end}
	v.Custom("end", due.Valid(), apperrors.ErrInvalidDateRange.Error())

	if v.HasErrors() {
		return ports.WorkloadRequest{}, v.Errors()
	}

	groupBy := domain.GroupBy(q.GroupBy)
	if groupBy == "" {
		groupBy = domain.GroupByProject
	}

	return ports.WorkloadRequest{
		AssigneeID: q.Assignee,
		GroupName:  q.Group,
		GroupBy:    groupBy,
		Due:        due,
	}, nil
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	return "Invalid value"
}

// Validator collects field errors for checks that span several fields.
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Custom adds message for field unless valid holds. Fields that already
// failed are not reported twice.
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid && len(v.errors.Errors[field]) == 0 {
		v.errors.Add(field, message)
	}
	return v
}

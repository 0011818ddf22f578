package sales

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var queryValidator = validator.New()

// Validate checks struct constraints and the mode rules of a query.
func (q Query) Validate() error {
	if err := queryValidator.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return invalidQuery("%s", strings.Join(msgs, "; "))
		}
		return invalidQuery("%v", err)
	}
	if q.Mode() == "" {
		return invalidQuery("one of productId, category or topN is required")
	}
	if q.TimeRange == "" {
		if q.StartDate == 0 || q.EndDate == 0 {
			return invalidQuery("startDate and endDate are required")
		}
		if q.EndDate < q.StartDate {
			return invalidQuery("endDate %s is before startDate %s", q.EndDate, q.StartDate)
		}
	}
	return nil
}

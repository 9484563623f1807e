package service

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	nricRe     = regexp.MustCompile(`^\d{6}-\d{2}-\d{4}$`)
	passportRe = regexp.MustCompile(`^[A-Za-z]{1,2}\d{6,9}$`)
)

// validIdentity accepts a Malaysian NRIC (YYMMDD-PB-GGGG with a plausible
// birth date) or a passport number.
func validIdentity(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if passportRe.MatchString(v) {
		return true
	}
	if !nricRe.MatchString(v) {
		return false
	}
	month, _ := strconv.Atoi(v[2:4])
	day, _ := strconv.Atoi(v[4:6])
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ic_passport", validIdentity)
	return v
}

type submitPayload struct {
	ICPassportNumber  string `validate:"omitempty,ic_passport"`
	ApplicationReason string `validate:"max=2000"`
}

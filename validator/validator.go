package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"synca/constants"
	"synca/errors"
	"synca/models"

	playground "github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

var (
	once     sync.Once
	validate *playground.Validate

	digitsRegex   = regexp.MustCompile(`^[0-9]+$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	nonDigitRegex = regexp.MustCompile(`[^0-9]`)
)

// engine khởi tạo validator một lần, đăng ký các tag riêng của hệ thống
func engine() *playground.Validate {
	once.Do(func() {
		validate = playground.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("digits", func(fl playground.FieldLevel) bool {
			return digitsRegex.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("contact", func(fl playground.FieldLevel) bool {
			_, ok := NormalizeContact(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("username", func(fl playground.FieldLevel) bool {
			return usernameRegex.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("role", func(fl playground.FieldLevel) bool {
			_, ok := models.ParseRole(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("pgtype", func(fl playground.FieldLevel) bool {
			return models.PGType(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("roomtype", func(fl playground.FieldLevel) bool {
			return contains(models.RoomTypes, fl.Field().String())
		})
		_ = validate.RegisterValidation("amenity", func(fl playground.FieldLevel) bool {
			return contains(constants.Amenities, fl.Field().String())
		})
		_ = validate.RegisterValidation("gender", func(fl playground.FieldLevel) bool {
			return contains(models.Genders, fl.Field().String())
		})
		_ = validate.RegisterValidation("occupation", func(fl playground.FieldLevel) bool {
			v := fl.Field().String()
			return v == models.OccupationStudent || v == models.OccupationWorking
		})
		_ = validate.RegisterValidation("date", func(fl playground.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// ValidateStruct kiểm tra struct theo tag `validate`, lỗi trả về theo từng field
func ValidateStruct(s interface{}) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return errors.NewAppError(errors.ErrCodeInvalidFormat, "Invalid request", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe)
		if _, exists := fields[name]; !exists {
			fields[name] = message(fe)
		}
	}
	return errors.Validation("Please correct the errors below.", fields)
}

// fieldName bỏ tên struct gốc, giữ đường dẫn field lồng nhau (vd amenities[0])
func fieldName(fe playground.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	case "digits":
		return "PIN Code must contain only digits."
	case "contact":
		return "Contact number must contain exactly 10 digits."
	case "username":
		return "Enter a valid username. Use letters, numbers and @/./+/-/_ only."
	case "date":
		return "Enter a valid date (YYYY-MM-DD)."
	case "role", "pgtype", "roomtype", "amenity", "gender", "occupation", "oneof":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	}
	return "Invalid value."
}

// NormalizeContact giữ lại chữ số, hợp lệ khi rỗng hoặc đúng 10 số
func NormalizeContact(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	return digits, len(digits) == 10
}

// ParseDate đọc ngày dạng YYYY-MM-DD, chuỗi rỗng trả về nil
func ParseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, errors.FieldError(field, "Enter a valid date (YYYY-MM-DD).")
	}
	return &t, nil
}

// ValidateStayDates kiểm tra ngày check-in/check-out của booking.
// Khi PG có lock-in, check-out phải đúng bằng check-in cộng lock-in; nếu bỏ trống sẽ được tính.
func ValidateStayDates(checkIn, checkOut *time.Time, lockInMonths int) (*time.Time, error) {
	if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
		return nil, errors.FieldError("checkOut", "Check-out date cannot be before check-in date.")
	}
	if lockInMonths > 0 && checkIn != nil {
		expected := models.AddMonths(*checkIn, lockInMonths)
		if checkOut == nil {
			return &expected, nil
		}
		if !models.DateOf(*checkOut).Equal(expected) {
			plural := "s"
			if lockInMonths == 1 {
				plural = ""
			}
			return nil, errors.FieldError("checkOut",
				fmt.Sprintf("Check-out must be exactly %d month%s after check-in.", lockInMonths, plural))
		}
	}
	return checkOut, nil
}

// ValidateRating rating phải từ 1 đến 5
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.FieldError("rating", "Rating must be between 1 and 5.")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

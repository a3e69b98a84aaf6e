package services

import (
	stderrors "errors"
	"time"

	"synca/errors"
	"synca/models"
	"synca/repository"
)

// Actor là người dùng đang gọi service, lấy từ token
type Actor struct {
	ID   uint
	Role models.Role
}

func (a *Actor) RequireStudent() error {
	if a == nil || a.ID == 0 {
		return errors.Unauthorized(errors.ErrCodeUnauthorized, "Authentication required.", nil)
	}
	if a.Role != models.RoleStudent {
		return errors.Forbidden("Only students can perform this action.")
	}
	return nil
}

func (a *Actor) RequireOwner() error {
	if a == nil || a.ID == 0 {
		return errors.Unauthorized(errors.ErrCodeUnauthorized, "Authentication required.", nil)
	}
	if a.Role != models.RoleOwner {
		return errors.Forbidden("Only PG owners can perform this action.")
	}
	return nil
}

// RequireOwnerOf owner phải là chủ PG
func (a *Actor) RequireOwnerOf(pg *models.PG) error {
	if err := a.RequireOwner(); err != nil {
		return err
	}
	if pg == nil || pg.OwnerID != a.ID {
		return errors.Forbidden("You do not have permission to manage this property.")
	}
	return nil
}

// Clock trả về thời điểm hiện tại theo múi giờ cấu hình
type Clock func() time.Time

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// FixedClock dùng cho test
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func (c Clock) Today() time.Time {
	return models.DateOf(c())
}

// storeErr đổi lỗi repository thành AppError
func storeErr(err error, code errors.ErrorCode, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound(code, notFound)
	}
	return errors.Internal("Database error", err)
}

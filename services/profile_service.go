package services

import (
	"context"
	"io"
	"strings"

	"synca/constants"
	"synca/dto"
	"synca/errors"
	"synca/models"
	"synca/repository"
	"synca/validator"

	"golang.org/x/crypto/bcrypt"
)

// ProfileService hồ sơ sinh viên, đổi mật khẩu và ảnh đại diện
type ProfileService struct {
	store  repository.Store
	images ImageStore
	clock  Clock
}

func NewProfileService(store repository.Store, images ImageStore, clock Clock) *ProfileService {
	return &ProfileService{store: store, images: images, clock: clock}
}

func (s *ProfileService) loadUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, errors.ErrCodeUserNotFound, "User not found.")
	}
	return u, nil
}

// Get hồ sơ được tạo khi truy cập lần đầu
func (s *ProfileService) Get(ctx context.Context, actor *Actor) (*dto.StudentProfileView, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Profiles().GetOrCreate(ctx, actor.ID)
	if err != nil {
		return nil, errors.Internal("Could not load profile", err)
	}
	recent, err := s.store.Bookings().ListByUser(ctx, actor.ID, constants.RecentBookingsLimit)
	if err != nil {
		return nil, errors.Internal("Could not load bookings", err)
	}
	return &dto.StudentProfileView{
		User:           *user,
		Profile:        *profile,
		RecentBookings: bookingViews(recent, s.clock.Today()),
	}, nil
}

func (s *ProfileService) Update(ctx context.Context, actor *Actor, input dto.ProfileInput) (*dto.StudentProfileView, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	contact, _ := validator.NormalizeContact(input.ContactNumber)
	dob, err := validator.ParseDate("dateOfBirth", input.DateOfBirth)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, actor.ID)
		if err != nil {
			return storeErr(err, errors.ErrCodeUserNotFound, "User not found.")
		}
		user.FirstName = strings.TrimSpace(input.FirstName)
		user.LastName = strings.TrimSpace(input.LastName)
		user.Age = input.Age
		user.Gender = input.Gender
		user.ContactNumber = contact
		if input.RemoveProfilePhoto {
			user.ProfilePhoto = ""
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return errors.Internal("Could not update user", err)
		}

		profile, err := tx.Profiles().GetOrCreate(ctx, actor.ID)
		if err != nil {
			return errors.Internal("Could not load profile", err)
		}
		profile.Phone = strings.TrimSpace(input.Phone)
		profile.DateOfBirth = dob
		profile.AddressLine = strings.TrimSpace(input.AddressLine)
		profile.City = strings.TrimSpace(input.City)
		profile.State = strings.TrimSpace(input.State)
		profile.Pincode = strings.TrimSpace(input.Pincode)
		profile.College = strings.TrimSpace(input.College)
		profile.Course = strings.TrimSpace(input.Course)
		profile.AcademicYear = strings.TrimSpace(input.AcademicYear)
		profile.EmergencyContactName = strings.TrimSpace(input.EmergencyContactName)
		profile.EmergencyContactPhone = strings.TrimSpace(input.EmergencyContactPhone)
		profile.Bio = strings.TrimSpace(input.Bio)
		if err := tx.Profiles().Save(ctx, profile); err != nil {
			return errors.Internal("Could not save profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor)
}

// ChangePassword cần mật khẩu cũ đúng; tài khoản offline chưa có mật khẩu thì không đổi được
func (s *ProfileService) ChangePassword(ctx context.Context, actor *Actor, input dto.PasswordInput) error {
	if err := actor.RequireStudent(); err != nil {
		return err
	}
	if err := validator.ValidateStruct(input); err != nil {
		return err
	}
	user, err := s.loadUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !user.HasUsablePassword() ||
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)) != nil {
		return errors.FieldError("oldPassword", "Your old password was entered incorrectly. Please enter it again.")
	}
	hashed, err := HashPassword(input.NewPassword)
	if err != nil {
		return errors.Internal("Could not hash password", err)
	}
	user.Password = hashed
	if err := s.store.Users().Update(ctx, user); err != nil {
		return errors.Internal("Could not update password", err)
	}
	return nil
}

// UploadPhoto dùng chung cho sinh viên và owner
func (s *ProfileService) UploadPhoto(ctx context.Context, actor *Actor, file io.Reader) (*models.User, error) {
	if actor == nil || actor.ID == 0 {
		return nil, errors.Unauthorized(errors.ErrCodeUnauthorized, "Authentication required.", nil)
	}
	user, err := s.loadUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	url, err := s.images.Upload(ctx, file, "profile_photos")
	if err != nil {
		return nil, err
	}
	user.ProfilePhoto = url
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, errors.Internal("Could not update user", err)
	}
	return user, nil
}

package services

import (
	"context"
	stderrors "errors"
	"strings"

	"synca/dto"
	"synca/errors"
	"synca/models"
	"synca/repository"
	"synca/validator"
)

type ReviewService struct {
	store   repository.Store
	catalog *CatalogService
	clock   Clock
}

func NewReviewService(store repository.Store, catalog *CatalogService, clock Clock) *ReviewService {
	return &ReviewService{store: store, catalog: catalog, clock: clock}
}

// Eligibility sinh viên chỉ được đánh giá khi có booking active/completed tại PG.
// actor nil nghĩa là khách chưa đăng nhập.
func (s *ReviewService) Eligibility(ctx context.Context, actor *Actor, pgID uint) (*dto.ReviewEligibility, error) {
	if _, err := s.store.PGs().FindByID(ctx, pgID); err != nil {
		return nil, storeErr(err, errors.ErrCodePGNotFound, "PG not found.")
	}
	if actor == nil || actor.ID == 0 {
		return &dto.ReviewEligibility{Reason: "You must be logged in to review this property."}, nil
	}
	if actor.Role != models.RoleStudent {
		return &dto.ReviewEligibility{Reason: "Only students can review properties."}, nil
	}

	result := &dto.ReviewEligibility{}
	existing, err := s.store.Reviews().FindByPGAndUser(ctx, pgID, actor.ID)
	switch {
	case err == nil:
		result.Existing = existing
	case !stderrors.Is(err, repository.ErrNotFound):
		return nil, errors.Internal("Could not load review", err)
	}

	bookings, err := s.store.Bookings().ListByUserInPG(ctx, actor.ID, pgID)
	if err != nil {
		return nil, errors.Internal("Could not load bookings", err)
	}
	today := s.clock.Today()
	for i := range bookings {
		status := models.CalculateStatus(&bookings[i], today)
		if status == models.BookingStatusActive || status == models.BookingStatusCompleted {
			result.CanReview = true
			return result, nil
		}
	}
	result.Reason = "You can review only after staying at this property."
	return result, nil
}

// Submit tạo hoặc cập nhật đánh giá duy nhất của sinh viên cho PG
func (s *ReviewService) Submit(ctx context.Context, actor *Actor, pgID uint, input dto.ReviewInput) (*models.Review, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	eligibility, err := s.Eligibility(ctx, actor, pgID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanReview {
		return nil, &errors.AppError{Kind: errors.KindForbidden, Code: errors.ErrCodeNotEligible, Message: eligibility.Reason}
	}
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := validator.ValidateRating(input.Rating); err != nil {
		return nil, err
	}

	review := eligibility.Existing
	if review == nil {
		review = &models.Review{PGID: pgID, UserID: actor.ID}
	}
	review.Rating = input.Rating
	review.Comment = input.Comment
	if err := s.store.Reviews().Save(ctx, review); err != nil {
		return nil, errors.Internal("Could not save review", err)
	}
	s.catalog.Invalidate(ctx)
	return review, nil
}

// List đánh giá mới nhất trước kèm quyền đánh giá của người xem
func (s *ReviewService) List(ctx context.Context, actor *Actor, pgID uint) ([]dto.ReviewView, *dto.ReviewEligibility, error) {
	eligibility, err := s.Eligibility(ctx, actor, pgID)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := s.store.Reviews().ListByPG(ctx, pgID)
	if err != nil {
		return nil, nil, errors.Internal("Could not load reviews", err)
	}
	views := make([]dto.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, reviewView(r))
	}
	return views, eligibility, nil
}

package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"synca/dto"
	"synca/errors"
	"synca/models"
	"synca/repository"
	"synca/services/logger"
	"synca/validator"

	"github.com/lib/pq"
)

// PropertyService owner tạo, sửa PG và tải ảnh
type PropertyService struct {
	store   repository.Store
	images  ImageStore
	catalog *CatalogService
	logger  logger.Logger
}

func NewPropertyService(store repository.Store, images ImageStore, catalog *CatalogService, log logger.Logger) *PropertyService {
	return &PropertyService{store: store, images: images, catalog: catalog, logger: log}
}

// FormatAddress ghép thành phố và mã bưu chính vào cuối địa chỉ
func FormatAddress(address, city, pincode string) string {
	address = strings.TrimSpace(address)
	city = strings.TrimSpace(city)
	pincode = strings.TrimSpace(pincode)
	switch {
	case city != "" && pincode != "":
		return fmt.Sprintf("%s, %s - %s", address, city, pincode)
	case city != "":
		return fmt.Sprintf("%s, %s", address, city)
	case pincode != "":
		return fmt.Sprintf("%s - %s", address, pincode)
	}
	return address
}

func applyProperty(pg *models.PG, input dto.PropertyInput) {
	pg.Name = strings.TrimSpace(input.Name)
	pg.Area = strings.TrimSpace(input.Area)
	pg.Address = FormatAddress(input.Address, input.City, input.Pincode)
	pg.Type = models.PGType(input.Type)
	pg.Description = strings.TrimSpace(input.Description)
	pg.Amenities = pq.StringArray(uniqueStrings(input.Amenities))
	pg.Deposit = input.Deposit
	pg.LockInPeriod = input.LockInPeriod
	if input.CoverImage != "" {
		pg.CoverImage = input.CoverImage
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func (s *PropertyService) Create(ctx context.Context, actor *Actor, input dto.PropertyInput) (*models.PG, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	pg := &models.PG{OwnerID: actor.ID}
	applyProperty(pg, input)
	if err := s.store.PGs().Create(ctx, pg); err != nil {
		return nil, errors.Internal("Could not create property", err)
	}
	s.logger.Info("PG %d created by owner %d", pg.ID, actor.ID)
	s.catalog.Invalidate(ctx)
	return pg, nil
}

func (s *PropertyService) owned(ctx context.Context, actor *Actor, pgID uint) (*models.PG, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	pg, err := s.store.PGs().FindByID(ctx, pgID)
	if err != nil {
		return nil, storeErr(err, errors.ErrCodePGNotFound, "PG not found.")
	}
	if err := actor.RequireOwnerOf(pg); err != nil {
		return nil, err
	}
	return pg, nil
}

func (s *PropertyService) Update(ctx context.Context, actor *Actor, pgID uint, input dto.PropertyInput) (*models.PG, error) {
	pg, err := s.owned(ctx, actor, pgID)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	applyProperty(pg, input)
	if err := s.store.PGs().Update(ctx, pg); err != nil {
		return nil, errors.Internal("Could not update property", err)
	}
	s.catalog.Invalidate(ctx)
	return pg, nil
}

// AddImages tải từng ảnh lên kho ảnh rồi lưu PGImage; ảnh đầu tiên làm ảnh bìa nếu PG chưa có
func (s *PropertyService) AddImages(ctx context.Context, actor *Actor, pgID uint, files []io.Reader) ([]models.PGImage, error) {
	pg, err := s.owned(ctx, actor, pgID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.FieldError("images", "Select at least one image.")
	}
	saved := make([]models.PGImage, 0, len(files))
	for _, f := range files {
		url, err := s.images.Upload(ctx, f, fmt.Sprintf("pg_images/%d", pg.ID))
		if err != nil {
			return saved, err
		}
		img := models.PGImage{PGID: pg.ID, Image: url}
		if err := s.store.PGs().AddImage(ctx, &img); err != nil {
			return saved, errors.Internal("Could not save image", err)
		}
		saved = append(saved, img)
	}
	if pg.CoverImage == "" {
		pg.CoverImage = saved[0].Image
		if err := s.store.PGs().Update(ctx, pg); err != nil {
			return saved, errors.Internal("Could not update cover image", err)
		}
	}
	s.catalog.Invalidate(ctx)
	return saved, nil
}

func (s *PropertyService) ListMine(ctx context.Context, actor *Actor) ([]models.PG, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	pgs, err := s.store.PGs().ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, errors.Internal("Could not load properties", err)
	}
	return pgs, nil
}

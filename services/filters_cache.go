package services

import (
	"context"

	"synca/constants"
	"synca/dto"
)

func SaveLastFilters(ctx context.Context, cache Cache, session string, filters *dto.PGFilters) error {
	return cache.Set(ctx, constants.LastFiltersPrefix+session, filters, constants.LastFiltersTTL)
}

// GetLastFilters trả về nil khi session chưa lọc lần nào
func GetLastFilters(ctx context.Context, cache Cache, session string) (*dto.PGFilters, error) {
	var filters dto.PGFilters
	ok, err := cache.Get(ctx, constants.LastFiltersPrefix+session, &filters)
	if err != nil || !ok {
		return nil, err
	}
	return &filters, nil
}

func ClearLastFilters(ctx context.Context, cache Cache, session string) error {
	return cache.Delete(ctx, constants.LastFiltersPrefix+session)
}

// Merge yêu cầu cũ với yêu cầu mới, giá trị mới được ưu tiên
func MergeFilters(old *dto.PGFilters, new *dto.PGFilters) *dto.PGFilters {
	if old == nil {
		return new
	}
	new.Area = orString(new.Area, old.Area)
	new.PGType = orString(new.PGType, old.PGType)
	new.RoomType = orString(new.RoomType, old.RoomType)
	new.MaxPrice = orFloatPointer(new.MaxPrice, old.MaxPrice)
	return new
}

func orString(newVal, oldVal string) string {
	if newVal != "" {
		return newVal
	}
	return oldVal
}

func orFloatPointer(newVal, oldVal *float64) *float64 {
	if newVal != nil {
		return newVal
	}
	return oldVal
}

package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"synca/constants"
	"synca/dto"
	"synca/errors"
	"synca/models"
	"synca/repository"
	"synca/services/logger"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/goccy/go-json"
	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// CatalogService truy vấn danh sách và chi tiết PG, cache kết quả theo phiên bản
type CatalogService struct {
	store  repository.Store
	cache  Cache
	logger logger.Logger
	clock  Clock
}

func NewCatalogService(store repository.Store, cache Cache, log logger.Logger, clock Clock) *CatalogService {
	return &CatalogService{store: store, cache: cache, logger: log, clock: clock}
}

// BuildFilters đọc tham số lọc thô; max_price không hợp lệ bị bỏ qua
func BuildFilters(area, pgType, roomType, maxPrice string) dto.PGFilters {
	filters := dto.PGFilters{
		Area:     strings.TrimSpace(area),
		PGType:   strings.TrimSpace(pgType),
		RoomType: strings.TrimSpace(roomType),
	}
	if raw := strings.TrimSpace(maxPrice); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			filters.MaxPrice = &v
		}
	}
	return filters
}

// Search lọc catalog; session khác rỗng thì lưu lại bộ lọc, merge=true gộp với bộ lọc trước đó
func (s *CatalogService) Search(ctx context.Context, filters dto.PGFilters, session string, merge bool) (*dto.CatalogResult, error) {
	if session != "" && merge {
		last, err := GetLastFilters(ctx, s.cache, session)
		if err != nil {
			s.logger.Debug("read last filters for %s: %v", session, err)
		}
		filters = *MergeFilters(last, &filters)
	}

	pgs, err := s.cachedSearch(ctx, filters)
	if err != nil {
		return nil, err
	}
	result := &dto.CatalogResult{Filters: filters, PGs: pgs}
	if filters.Area != "" && len(pgs) == 0 {
		areas, err := s.Areas(ctx)
		if err != nil {
			return nil, err
		}
		result.SuggestedArea = SuggestArea(filters.Area, areas)
	}

	if session != "" && !filters.IsEmpty() {
		if err := SaveLastFilters(ctx, s.cache, session, &filters); err != nil {
			s.logger.Debug("save last filters for %s: %v", session, err)
		}
	}
	return result, nil
}

func (s *CatalogService) cachedSearch(ctx context.Context, filters dto.PGFilters) ([]dto.PGSummary, error) {
	key, ok := s.resultKey(ctx, filters)
	if ok {
		var cached []dto.PGSummary
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		} else if err != nil {
			s.logger.Debug("catalog cache get %s: %v", key, err)
		}
	}

	pgs, err := s.search(ctx, filters)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := s.cache.Set(ctx, key, pgs, constants.CatalogCacheTTL); err != nil {
			s.logger.Debug("catalog cache set %s: %v", key, err)
		}
	}
	return pgs, nil
}

// resultKey gắn phiên bản catalog vào key; Invalidate tăng phiên bản để bỏ các key cũ
func (s *CatalogService) resultKey(ctx context.Context, filters dto.PGFilters) (string, bool) {
	var version int64
	if _, err := s.cache.Get(ctx, constants.CatalogVersionKey, &version); err != nil {
		return "", false
	}
	raw, err := json.Marshal(filters)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%sv%d:%s", constants.CatalogResultPrefix, version, raw), true
}

func (s *CatalogService) Invalidate(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, constants.CatalogVersionKey); err != nil {
		s.logger.Error("invalidate catalog cache: %v", err)
	}
}

func (s *CatalogService) search(ctx context.Context, filters dto.PGFilters) ([]dto.PGSummary, error) {
	pgs, err := s.store.PGs().Search(ctx, repository.PGQuery{
		Area:     filters.Area,
		Type:     filters.PGType,
		RoomType: filters.RoomType,
		MaxPrice: filters.MaxPrice,
	})
	if err != nil {
		return nil, errors.Internal("Could not search PGs", err)
	}
	ids := make([]uint, 0, len(pgs))
	for _, pg := range pgs {
		ids = append(ids, pg.ID)
	}
	ratings, err := s.store.Reviews().AverageRatings(ctx, ids)
	if err != nil {
		return nil, errors.Internal("Could not load ratings", err)
	}

	out := make([]dto.PGSummary, 0, len(pgs))
	for i := range pgs {
		pg := &pgs[i]
		summary := dto.PGSummary{
			ID:           pg.ID,
			Name:         pg.Name,
			Area:         pg.Area,
			Address:      pg.Address,
			Type:         pg.Type,
			Amenities:    pg.AmenitiesList(),
			PrimaryPhoto: pg.PrimaryPhoto(),
			MinPrice:     minPrice(pg.Rooms),
		}
		if avg, ok := ratings[pg.ID]; ok {
			a := avg
			summary.AverageRating = &a
		}
		out = append(out, summary)
	}
	return out, nil
}

func minPrice(rooms []models.Room) *float64 {
	if len(rooms) == 0 {
		return nil
	}
	lowest := rooms[0].PricePerBed
	for _, r := range rooms[1:] {
		if r.PricePerBed < lowest {
			lowest = r.PricePerBed
		}
	}
	return &lowest
}

func (s *CatalogService) Areas(ctx context.Context) ([]string, error) {
	areas, err := s.store.PGs().Areas(ctx)
	if err != nil {
		return nil, errors.Internal("Could not load areas", err)
	}
	return areas, nil
}

func (s *CatalogService) LastFilters(ctx context.Context, session string) (*dto.PGFilters, error) {
	if session == "" {
		return nil, nil
	}
	filters, err := GetLastFilters(ctx, s.cache, session)
	if err != nil {
		return nil, errors.Internal("Could not read saved filters", err)
	}
	return filters, nil
}

// ResetLastFilters xóa bộ lọc đã lưu của session
func (s *CatalogService) ResetLastFilters(ctx context.Context, session string) error {
	if session == "" {
		return nil
	}
	if err := ClearLastFilters(ctx, s.cache, session); err != nil {
		return errors.Internal("Could not clear saved filters", err)
	}
	return nil
}

// Hàm chuẩn hóa chuỗi
func normalizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.ToLower(unidecode.Unidecode(input))
}

// Tính độ tương đồng giữa hai chuỗi
func calculateSimilarity(a, b string) float64 {
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// SuggestArea gợi ý khu vực gần đúng nhất, rỗng khi không đủ giống
func SuggestArea(query string, areas []string) string {
	q := normalizeInput(query)
	if q == "" || len(areas) == 0 {
		return ""
	}
	byNormalized := make(map[string]string, len(areas))
	keys := make([]string, 0, len(areas))
	for _, a := range areas {
		n := normalizeInput(a)
		if n == "" {
			continue
		}
		if _, ok := byNormalized[n]; !ok {
			byNormalized[n] = a
			keys = append(keys, n)
		}
	}
	if len(keys) == 0 {
		return ""
	}

	best, bestScore := "", 0.0
	if candidate := closestmatch.New(keys, []int{2, 3}).Closest(q); candidate != "" {
		best, bestScore = candidate, calculateSimilarity(q, candidate)
	}
	if bestScore < constants.AreaMatchThreshold {
		for _, k := range keys {
			if score := calculateSimilarity(q, k); score > bestScore {
				best, bestScore = k, score
			}
		}
	}
	if bestScore < constants.AreaMatchThreshold {
		return ""
	}
	return byNormalized[best]
}

// Detail chi tiết PG: phòng, giường, người ở, đánh giá
func (s *CatalogService) Detail(ctx context.Context, pgID uint) (*dto.PGDetail, error) {
	pg, err := s.store.PGs().FindByID(ctx, pgID)
	if err != nil {
		return nil, storeErr(err, errors.ErrCodePGNotFound, "PG not found.")
	}
	rooms, err := s.store.Rooms().ListByPG(ctx, pgID)
	if err != nil {
		return nil, errors.Internal("Could not load rooms", err)
	}
	bookings, err := s.store.Bookings().ListByPG(ctx, pgID)
	if err != nil {
		return nil, errors.Internal("Could not load bookings", err)
	}
	reviews, err := s.store.Reviews().ListByPG(ctx, pgID)
	if err != nil {
		return nil, errors.Internal("Could not load reviews", err)
	}

	byBed := make(map[uint][]models.Booking)
	for _, b := range bookings {
		byBed[b.BedID] = append(byBed[b.BedID], b)
	}

	today := s.clock.Today()
	detail := &dto.PGDetail{
		PG:           *pg,
		Amenities:    pg.AmenitiesList(),
		PrimaryPhoto: pg.PrimaryPhoto(),
		LockInPeriod: pg.LockInPeriod,
		Deposit:      pg.Deposit,
		Rooms:        make([]dto.RoomView, 0, len(rooms)),
		Reviews:      make([]dto.ReviewView, 0, len(reviews)),
	}
	for i := range rooms {
		detail.Rooms = append(detail.Rooms, roomView(&rooms[i], byBed, today))
	}

	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
			detail.Reviews = append(detail.Reviews, reviewView(r))
		}
		avg := float64(total) / float64(len(reviews))
		detail.AverageRating = &avg
	}
	return detail, nil
}

func reviewView(r models.Review) dto.ReviewView {
	author := ""
	if r.User != nil {
		author = r.User.DisplayName()
	}
	return dto.ReviewView{
		ID:        r.ID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Author:    author,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

// roomView bookings theo giường đã sắp mới nhất trước
func roomView(room *models.Room, byBed map[uint][]models.Booking, today time.Time) dto.RoomView {
	view := dto.RoomView{
		ID:           room.ID,
		RoomNumber:   room.RoomNumber,
		RoomType:     room.RoomType,
		PricePerBed:  room.PricePerBed,
		TotalBeds:    len(room.Beds),
		Beds:         make([]dto.BedView, 0, len(room.Beds)),
		RoommateBeds: []uint{},
	}
	if capacity, ok := room.ShareCapacity(); ok {
		view.Capacity = &capacity
	}
	for _, bed := range room.Beds {
		if bed.IsAvailable {
			view.AvailableBeds++
		}
		bv := bedView(bed, byBed[bed.ID], today)
		if bv.Occupant != nil {
			view.RoommateBeds = append(view.RoommateBeds, bed.ID)
		}
		view.Beds = append(view.Beds, bv)
	}
	return view
}

func bedView(bed models.Bed, bookings []models.Booking, today time.Time) dto.BedView {
	view := dto.BedView{ID: bed.ID, Identifier: bed.Identifier, IsAvailable: bed.IsAvailable}

	var current, pending *models.Booking
	for i := range bookings {
		b := bookings[i]
		models.ApplyDerivedStatus(&b, today)
		if b.Status == models.BookingStatusPending && pending == nil {
			pending = &b
		}
		if b.Status == models.BookingStatusActive || b.Status == models.BookingStatusUpcoming {
			current = &b
			break
		}
	}

	if !bed.IsAvailable {
		if current != nil {
			current.Bed = nil
			view.CurrentBooking = current
			view.Occupant = dto.NewUserBrief(current.User)
		}
		if pending != nil {
			pending.Bed = nil
			view.PendingBooking = pending
		}
	}

	switch {
	case view.CurrentBooking != nil:
		view.State = "occupied"
	case view.PendingBooking != nil:
		view.State = "pending"
	case bed.IsAvailable:
		view.State = "available"
	default:
		view.State = "unavailable"
	}
	return view
}

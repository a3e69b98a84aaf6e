package controllers

import (
	"synca/dto"
	"synca/middleware"
	"synca/response"
	"synca/services"

	"github.com/gin-gonic/gin"
)

// CatalogController các API công khai xem PG và đánh giá
type CatalogController struct {
	catalog *services.CatalogService
	reviews *services.ReviewService
}

func NewCatalogController(catalog *services.CatalogService, reviews *services.ReviewService) *CatalogController {
	return &CatalogController{catalog: catalog, reviews: reviews}
}

// ListPGs GET /pgs?area=&pg_type=&room_type=&max_price=&merge=1
func (ctl *CatalogController) ListPGs(c *gin.Context) {
	filters := services.BuildFilters(c.Query("area"), c.Query("pg_type"), c.Query("room_type"), c.Query("max_price"))
	merge := c.Query("merge") == "1" || c.Query("merge") == "true"

	result, err := ctl.catalog.Search(c.Request.Context(), filters, middleware.SessionID(c), merge)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithTotal(c, result, len(result.PGs))
}

func (ctl *CatalogController) Areas(c *gin.Context) {
	areas, err := ctl.catalog.Areas(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, areas)
}

func (ctl *CatalogController) LastFilters(c *gin.Context) {
	filters, err := ctl.catalog.LastFilters(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	if filters == nil {
		filters = &dto.PGFilters{}
	}
	response.Success(c, filters)
}

// ClearLastFilters DELETE /pgs/filters/last
func (ctl *CatalogController) ClearLastFilters(c *gin.Context) {
	if err := ctl.catalog.ResetLastFilters(c.Request.Context(), middleware.SessionID(c)); err != nil {
		response.Fail(c, err)
		return
	}
	response.Message(c, "Filters cleared.", nil)
}

func (ctl *CatalogController) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := ctl.catalog.Detail(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, detail)
}

func (ctl *CatalogController) Reviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reviews, eligibility, err := ctl.reviews.List(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"reviews": reviews, "eligibility": eligibility})
}

func (ctl *CatalogController) SubmitReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.ReviewInput
	if !bindJSON(c, &input) {
		return
	}
	review, err := ctl.reviews.Submit(c.Request.Context(), middleware.CurrentActor(c), id, input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, review)
}

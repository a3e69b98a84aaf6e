package controllers

import (
	"io"
	"mime/multipart"

	"synca/dto"
	"synca/middleware"
	"synca/response"
	"synca/services"

	"github.com/gin-gonic/gin"
)

const maxImagesPerUpload = 10

// OwnerController dashboard và quản lý PG của owner
type OwnerController struct {
	dashboard  *services.DashboardService
	properties *services.PropertyService
}

func NewOwnerController(dashboard *services.DashboardService, properties *services.PropertyService) *OwnerController {
	return &OwnerController{dashboard: dashboard, properties: properties}
}

func (o *OwnerController) Dashboard(c *gin.Context) {
	data, err := o.dashboard.Dashboard(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, data)
}

func (o *OwnerController) ListProperties(c *gin.Context) {
	pgs, err := o.properties.ListMine(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithTotal(c, pgs, len(pgs))
}

func (o *OwnerController) CreateProperty(c *gin.Context) {
	var input dto.PropertyInput
	if !bindJSON(c, &input) {
		return
	}
	pg, err := o.properties.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, pg)
}

func (o *OwnerController) UpdateProperty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.PropertyInput
	if !bindJSON(c, &input) {
		return
	}
	pg, err := o.properties.Update(c.Request.Context(), middleware.CurrentActor(c), id, input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, pg)
}

// UploadImages POST multipart field "images", nhiều file
func (o *OwnerController) UploadImages(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "Expected multipart form with images")
		return
	}
	headers := form.File["images"]
	if len(headers) > maxImagesPerUpload {
		response.BadRequest(c, "Too many images in one upload")
		return
	}

	files := make([]io.Reader, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			response.BadRequest(c, "Could not read uploaded file")
			return
		}
		opened = append(opened, f)
		files = append(files, f)
	}

	images, err := o.properties.AddImages(c.Request.Context(), middleware.CurrentActor(c), id, files)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, images)
}

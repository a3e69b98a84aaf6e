package controllers

import (
	"synca/middleware"
	"synca/response"
	"synca/services"
	"synca/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

type NotificationController struct {
	notifications *services.NotificationService
	melody        *melody.Melody
}

func NewNotificationController(notifications *services.NotificationService, m *melody.Melody) *NotificationController {
	return &NotificationController{notifications: notifications, melody: m}
}

// GetNotifyByUser GET /notifications?markRead=1
func (ctrl *NotificationController) GetNotifyByUser(c *gin.Context) {
	markRead := c.Query("markRead") == "1" || c.Query("markRead") == "true"
	list, err := ctrl.notifications.List(c.Request.Context(), middleware.CurrentActor(c), markRead)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithTotal(c, list, len(list))
}

// Connect nâng cấp websocket, session giữ userID để đẩy thông báo đúng người
func (ctrl *NotificationController) Connect(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		response.Unauthorized(c)
		return
	}
	keys := map[string]interface{}{notification.SessionUserKey: actor.ID}
	if err := ctrl.melody.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		c.Error(err)
	}
}

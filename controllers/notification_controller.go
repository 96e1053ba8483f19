package controllers

import (
	"fmt"
	"net/http"

	"guesthouse-backend/services"
	"guesthouse-backend/utils"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Notifications *services.NotificationService
	Billing       *services.BillingService
	// DaysBefore is the reminder horizon used when the request names none.
	DaysBefore int
}

func NewNotificationController(notifications *services.NotificationService, billing *services.BillingService, daysBefore int) *NotificationController {
	return &NotificationController{Notifications: notifications, Billing: billing, DaysBefore: daysBefore}
}

type sendRemindersRequest struct {
	DaysBefore *int `json:"days_before"`
}

// GET /api/v1/notifications?status=&guest_id=&type=
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	guestID, ok := queryUint(c, "guest_id")
	if !ok {
		return
	}
	list, err := nc.Notifications.List(c.Request.Context(), services.NotificationFilter{
		Status:  c.Query("status"),
		Type:    c.Query("type"),
		GuestID: guestID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"notifications": list}, "Notifications retrieved successfully")
}

func (nc *NotificationController) GetNotification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := nc.Notifications.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"notification": n}, "Notification retrieved successfully")
}

// GET /api/v1/notifications/guest/:guest_id
func (nc *NotificationController) GetGuestNotifications(c *gin.Context) {
	guestID, ok := paramID(c, "guest_id")
	if !ok {
		return
	}
	list, err := nc.Notifications.ByGuest(c.Request.Context(), guestID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"notifications": list}, "Guest notifications retrieved successfully")
}

func (nc *NotificationController) CreateNotification(c *gin.Context) {
	var in services.NotificationInput
	if !bindJSON(c, &in) {
		return
	}
	n, err := nc.Notifications.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"notification": n}, "Notification created successfully")
}

func (nc *NotificationController) UpdateNotification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.NotificationUpdate
	if !bindJSON(c, &in) {
		return
	}
	n, err := nc.Notifications.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"notification": n}, "Notification updated successfully")
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := nc.Notifications.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, nil, "Notification deleted successfully")
}

// POST /api/v1/notifications/send-reminders {"days_before": 3}
func (nc *NotificationController) SendReminders(c *gin.Context) {
	var req sendRemindersRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	days := nc.DaysBefore
	if req.DaysBefore != nil {
		days = *req.DaysBefore
	}

	result, err := nc.Billing.SendReminders(c.Request.Context(), nc.Billing.Today(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result,
		fmt.Sprintf("Sent %d reminders for payments due in %d days", result.Count, days))
}

// POST /api/v1/notifications/send-overdue
func (nc *NotificationController) SendOverdueAlerts(c *gin.Context) {
	result, err := nc.Billing.SendOverdueAlerts(c.Request.Context(), nc.Billing.Today())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result, fmt.Sprintf("Sent %d overdue payment alerts", result.Count))
}

package controllers

import (
	"net/http"

	"guesthouse-backend/models"
	"guesthouse-backend/services"
	"guesthouse-backend/utils"

	"github.com/gin-gonic/gin"
)

// GuestController serves guest reads and the occupancy operations.
type GuestController struct {
	Guests    *services.GuestService
	Occupancy *services.OccupancyService
}

func NewGuestController(guests *services.GuestService, occupancy *services.OccupancyService) *GuestController {
	return &GuestController{Guests: guests, Occupancy: occupancy}
}

type checkInRequest struct {
	FullName      string  `json:"full_name"`
	ContactNumber string  `json:"contact_number"`
	Email         string  `json:"email"`
	IDProofURL    string  `json:"id_proof_url"`
	RoomID        uint    `json:"room_id"`
	CheckInDate   string  `json:"check_in_date"`
	RentAmount    float64 `json:"rent_amount"`
}

type checkOutRequest struct {
	CheckOutDate string `json:"check_out_date"`
}

type transferRequest struct {
	RoomID uint `json:"room_id"`
}

type reactivateRequest struct {
	RoomID *uint `json:"room_id"`
}

// ----------------------------------------------------------------------
// Reads
// ----------------------------------------------------------------------

// GET /api/v1/guests?status=&room_id=&check_in_after=&check_in_before=
func (gc *GuestController) GetGuests(c *gin.Context) {
	roomID, ok := queryUint(c, "room_id")
	if !ok {
		return
	}
	gc.listGuests(c, services.GuestFilter{
		Status:        c.Query("status"),
		RoomID:        roomID,
		CheckInAfter:  c.Query("check_in_after"),
		CheckInBefore: c.Query("check_in_before"),
	}, "Guests retrieved successfully")
}

func (gc *GuestController) GetActiveGuests(c *gin.Context) {
	gc.listGuests(c, services.GuestFilter{Status: string(models.GuestActive)}, "Active guests retrieved successfully")
}

func (gc *GuestController) GetInactiveGuests(c *gin.Context) {
	gc.listGuests(c, services.GuestFilter{Status: string(models.GuestInactive)}, "Inactive guests retrieved successfully")
}

func (gc *GuestController) listGuests(c *gin.Context, f services.GuestFilter, message string) {
	guests, err := gc.Guests.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guests": guests}, message)
}

// GET /api/v1/guests/search?q=
func (gc *GuestController) SearchGuests(c *gin.Context) {
	guests, err := gc.Guests.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guests": guests}, "Search results retrieved successfully")
}

func (gc *GuestController) GetGuest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	guest, err := gc.Guests.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guest": guest}, "Guest retrieved successfully")
}

// GET /api/v1/guests/:id/history
func (gc *GuestController) GetGuestHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	history, err := gc.Occupancy.GuestHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"history": history}, "Room history retrieved successfully")
}

// ----------------------------------------------------------------------
// Occupancy
// ----------------------------------------------------------------------

// POST /api/v1/guests
func (gc *GuestController) CheckIn(c *gin.Context) {
	var req checkInRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CheckInDate == "" {
		respondError(c, services.ErrMissingFields.WithMessage("check_in_date is required"))
		return
	}
	checkIn, err := services.ParseDateParam(req.CheckInDate)
	if err != nil {
		respondError(c, err)
		return
	}

	guest, err := gc.Occupancy.CheckIn(c.Request.Context(), services.GuestDraft{
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		IDProofURL:    req.IDProofURL,
		CheckInDate:   *checkIn,
		RentAmount:    req.RentAmount,
	}, req.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"guest": guest}, "Guest created successfully")
}

// PUT /api/v1/guests/:id
func (gc *GuestController) UpdateGuest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.GuestUpdate
	if !bindJSON(c, &in) {
		return
	}
	guest, err := gc.Occupancy.UpdateGuest(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guest": guest}, "Guest updated successfully")
}

// POST /api/v1/guests/:id/checkout
func (gc *GuestController) CheckOut(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req checkOutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	date, err := services.ParseDateParam(req.CheckOutDate)
	if err != nil {
		respondError(c, err)
		return
	}
	guest, err := gc.Occupancy.CheckOut(c.Request.Context(), id, date)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guest": guest}, "Guest checked out successfully")
}

// POST /api/v1/guests/:id/transfer
func (gc *GuestController) TransferRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req transferRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RoomID == 0 {
		respondError(c, services.ErrMissingFields.WithMessage("room_id is required"))
		return
	}
	guest, err := gc.Occupancy.TransferRoom(c.Request.Context(), id, req.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guest": guest}, "Guest transferred successfully")
}

// POST /api/v1/guests/:id/reactivate
func (gc *GuestController) Reactivate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reactivateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	guest, err := gc.Occupancy.Reactivate(c.Request.Context(), id, req.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guest": guest}, "Guest reactivated successfully")
}

// DELETE /api/v1/guests/:id
func (gc *GuestController) DeleteGuest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := gc.Occupancy.DeleteGuest(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, nil, "Guest deleted successfully")
}

package controllers

import (
	"net/http"

	"guesthouse-backend/services"
	"guesthouse-backend/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Rooms *services.RoomService
}

func NewRoomController(rooms *services.RoomService) *RoomController {
	return &RoomController{Rooms: rooms}
}

// ----------------------------------------------------
// 1. Get Rooms (GET /api/v1/rooms?status=)
// ----------------------------------------------------

func (rc *RoomController) GetRooms(c *gin.Context) {
	rc.listRooms(c, c.Query("status"), "Rooms retrieved successfully")
}

func (rc *RoomController) GetAvailableRooms(c *gin.Context) {
	rc.listRooms(c, "available", "Available rooms retrieved successfully")
}

func (rc *RoomController) GetOccupiedRooms(c *gin.Context) {
	rc.listRooms(c, "occupied", "Occupied rooms retrieved successfully")
}

func (rc *RoomController) listRooms(c *gin.Context, status, message string) {
	rooms, err := rc.Rooms.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"rooms": rooms}, message)
}

// ----------------------------------------------------
// 2. Get Room (GET /api/v1/rooms/:id)
// ----------------------------------------------------

func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	room, err := rc.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"room": room}, "Room retrieved successfully")
}

// GET /api/v1/rooms/:id/guests
func (rc *RoomController) GetRoomGuests(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	guests, err := rc.Rooms.Guests(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guests": guests}, "Room guests retrieved successfully")
}

// ----------------------------------------------------
// 3. Create Room (POST /api/v1/rooms)
// ----------------------------------------------------

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var in services.RoomInput
	if !bindJSON(c, &in) {
		return
	}
	room, err := rc.Rooms.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"room": room}, "Room created successfully")
}

// ----------------------------------------------------
// 4. Update Room (PUT /api/v1/rooms/:id)
// ----------------------------------------------------

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.RoomUpdate
	if !bindJSON(c, &in) {
		return
	}
	room, err := rc.Rooms.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"room": room}, "Room updated successfully")
}

// ----------------------------------------------------
// 5. Delete Room (DELETE /api/v1/rooms/:id)
// ----------------------------------------------------

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rc.Rooms.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, nil, "Room deleted successfully")
}

package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"guesthouse-backend/services"
	"guesthouse-backend/utils"

	"github.com/gin-gonic/gin"
)

// DashboardController serves the dashboard widgets and the reports.
type DashboardController struct {
	Reports *services.ReportService
}

func NewDashboardController(reports *services.ReportService) *DashboardController {
	return &DashboardController{Reports: reports}
}

// ----------------------------------------------------------------------
// Dashboard (GET /api/v1/dashboard/...)
// ----------------------------------------------------------------------

func (dc *DashboardController) Summary(c *gin.Context) {
	summary, err := dc.Reports.DashboardSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, summary, "Dashboard summary retrieved successfully")
}

func (dc *DashboardController) DueThisWeek(c *gin.Context) {
	payments, err := dc.Reports.DueThisWeek(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"payments": payments}, "Payments due this week retrieved successfully")
}

func (dc *DashboardController) NewGuests(c *gin.Context) {
	guests, err := dc.Reports.NewGuests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"guests": guests}, "New guests retrieved successfully")
}

func (dc *DashboardController) VacantRooms(c *gin.Context) {
	rooms, err := dc.Reports.VacantRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"rooms": rooms}, "Vacant rooms retrieved successfully")
}

// GET /api/v1/dashboard/monthly-collection?year=2024
func (dc *DashboardController) MonthlyCollection(c *gin.Context) {
	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, services.ErrInvalidYear)
			return
		}
		year = y
	}
	out, err := dc.Reports.MonthlyCollection(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out, "Monthly collection retrieved successfully")
}

func (dc *DashboardController) OccupancyRate(c *gin.Context) {
	out, err := dc.Reports.OccupancyRate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out, "Occupancy rate retrieved successfully")
}

// ----------------------------------------------------------------------
// Reports (GET /api/v1/reports/...)
// ----------------------------------------------------------------------

// GET /api/v1/reports/occupancy?date=
func (dc *DashboardController) OccupancyReport(c *gin.Context) {
	date, err := services.ParseDateParam(c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := dc.Reports.OccupancyReport(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"report": report}, "Occupancy report generated successfully")
}

// GET /api/v1/reports/rent?start_date=&end_date=&guest_id=&room_id=
func (dc *DashboardController) RentReport(c *gin.Context) {
	start, err := services.ParseDateParam(c.Query("start_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := services.ParseDateParam(c.Query("end_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	guestID, ok := queryUint(c, "guest_id")
	if !ok {
		return
	}
	roomID, ok := queryUint(c, "room_id")
	if !ok {
		return
	}
	report, err := dc.Reports.RentReport(c.Request.Context(), services.RentReportFilter{
		StartDate: start,
		EndDate:   end,
		GuestID:   guestID,
		RoomID:    roomID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"report": report}, "Rent report generated successfully")
}

// GET /api/v1/reports/guests?status=
func (dc *DashboardController) GuestsReport(c *gin.Context) {
	report, err := dc.Reports.GuestsReport(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"report": report}, "Guests report generated successfully")
}

// GET /api/v1/reports/payments?start_date=&end_date=&status=
func (dc *DashboardController) PaymentsReport(c *gin.Context) {
	start, err := services.ParseDateParam(c.Query("start_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := services.ParseDateParam(c.Query("end_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := dc.Reports.PaymentsReport(c.Request.Context(), start, end, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"report": report}, "Payments report generated successfully")
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/kds"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB        *gorm.DB
	Directory *services.TableDirectory
	Sessions  *services.TableSessionManager
	Parser    *services.QRParser
	Hub       *kds.Hub
}

func NewTableController(db *gorm.DB, directory *services.TableDirectory, sessions *services.TableSessionManager, parser *services.QRParser, hub *kds.Hub) *TableController {
	return &TableController{DB: db, Directory: directory, Sessions: sessions, Parser: parser, Hub: hub}
}

// tableView adalah meja untuk back-office, termasuk token dan status terisi.
type tableView struct {
	models.Table
	QRCodeToken   string               `json:"qr_code_token"`
	QRPayload     string               `json:"qr_payload"`
	Occupied      bool                 `json:"occupied"`
	ActiveSession *models.TableSession `json:"active_session,omitempty"`
}

func (tc *TableController) view(c *gin.Context, table models.Table) (tableView, error) {
	session, err := tc.Sessions.SessionForTable(c.Request.Context(), &table)
	if err != nil {
		return tableView{}, err
	}
	return tableView{
		Table:         table,
		QRCodeToken:   table.QRCodeToken,
		QRPayload:     tc.Parser.TableQRPayload(&table),
		Occupied:      session != nil,
		ActiveSession: session,
	}, nil
}

func (tc *TableController) findTable(c *gin.Context) (*models.Table, bool) {
	var table models.Table
	if err := tc.DB.WithContext(c.Request.Context()).First(&table, "id = ?", c.Param("table_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, services.ErrTableNotFound)
			return nil, false
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return nil, false
	}
	return &table, true
}

// CreateTable -> menambahkan meja baru, token QR dibuat otomatis
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string  `json:"table_number" binding:"required"`
		LocationID  *string `json:"location_id"`
		Capacity    int     `json:"capacity" binding:"gte=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing int64
	tc.DB.Model(&models.Table{}).Where("table_number = ? AND is_active = ?", req.TableNumber, true).Count(&existing)
	if existing > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("table number already in use"))
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		LocationID:  req.LocationID,
		Capacity:    req.Capacity,
		IsActive:    true,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.BroadcastTableCreate(table)

	utils.InfoLogger.Printf("New table created: %s", table.TableNumber)
	view, _ := tc.view(c, table)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", view)
}

// GetAllTables -> meja aktif terurut nomor, dengan status terisi
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Directory.ListActive(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]tableView, 0, len(tables))
	for _, table := range tables {
		v, err := tc.view(c, table)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		views = append(views, v)
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", views)
}

func (tc *TableController) GetTable(c *gin.Context) {
	table, ok := tc.findTable(c)
	if !ok {
		return
	}
	v, err := tc.view(c, *table)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", v)
}

// UpdateTable -> ubah nomor, kapasitas, lokasi, atau flag aktif
func (tc *TableController) UpdateTable(c *gin.Context) {
	var body struct {
		TableNumber *string `json:"table_number"`
		LocationID  *string `json:"location_id"`
		Capacity    *int    `json:"capacity" binding:"omitempty,gte=0"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, ok := tc.findTable(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if body.TableNumber != nil && *body.TableNumber != "" {
		updates["table_number"] = *body.TableNumber
	}
	if body.LocationID != nil {
		updates["location_id"] = body.LocationID
	}
	if body.Capacity != nil {
		updates["capacity"] = *body.Capacity
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nothing to update"))
		return
	}

	if err := tc.DB.Model(table).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tc.DB.First(table, "id = ?", table.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.BroadcastTableUpdate(*table)

	utils.InfoLogger.Printf("Table %s updated", table.TableNumber)
	v, _ := tc.view(c, *table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", v)
}

// RotateToken -> ganti token QR; QR lama tidak lagi bisa dipakai lewat token.
func (tc *TableController) RotateToken(c *gin.Context) {
	table, ok := tc.findTable(c)
	if !ok {
		return
	}

	token := models.NewQRToken()
	if err := tc.DB.Model(table).Update("qr_code_token", token).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	table.QRCodeToken = token

	utils.InfoLogger.Printf("QR token rotated for table %s", table.TableNumber)
	v, _ := tc.view(c, *table)
	utils.RespondJSON(c, http.StatusOK, "QR token rotated", v)
}

// GetTableQR -> PNG QR deep-link untuk dicetak. ?size=512, ?format=simple
func (tc *TableController) GetTableQR(c *gin.Context) {
	table, ok := tc.findTable(c)
	if !ok {
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "256"))
	if err != nil || size < 64 || size > 2048 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("size must be between 64 and 2048"))
		return
	}

	payload := tc.Parser.TableQRPayload(table)
	if c.Query("format") == "simple" {
		payload = services.SimpleQRPayload(table)
	}

	png, err := services.TableQRCodePNG(payload, size)
	if err != nil {
		utils.ErrorLogger.Printf("Error rendering QR for table %s: %v", table.TableNumber, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=table-"+table.TableNumber+".png")
	c.Data(http.StatusOK, "image/png", png)
}

// GetSessionHistory -> seluruh sesi meja, terbaru dulu
func (tc *TableController) GetSessionHistory(c *gin.Context) {
	table, ok := tc.findTable(c)
	if !ok {
		return
	}

	sessions, err := tc.Sessions.SessionHistory(c.Request.Context(), table.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session history", sessions)
}

// CancelActiveSession -> staff membatalkan sesi yang sedang berjalan di meja
func (tc *TableController) CancelActiveSession(c *gin.Context) {
	table, ok := tc.findTable(c)
	if !ok {
		return
	}

	session, err := tc.Sessions.GetActiveSession(c.Request.Context(), table.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if session == nil {
		respondServiceError(c, services.ErrNoActiveSession)
		return
	}

	closed, err := tc.Sessions.CancelSession(c.Request.Context(), session.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.BroadcastSessionClosed(*closed)
	utils.RespondJSON(c, http.StatusOK, "Table session cancelled", closed)
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenus -> ?category=Coffee
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	q := mc.DB.WithContext(c.Request.Context()).Where("available = ?", true).Order("category, id")
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var menus []models.MenuItem
	if err := q.Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// GetCategories -> kategori menu yang punya item tersedia
func (mc *MenuController) GetCategories(c *gin.Context) {
	var categories []string
	if err := mc.DB.WithContext(c.Request.Context()).Model(&models.MenuItem{}).
		Where("available = ?", true).
		Distinct().
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

// GetProducts -> marketplace, ?category=beans&featured=true
func (mc *MenuController) GetProducts(c *gin.Context) {
	q := mc.DB.WithContext(c.Request.Context()).Order("featured desc, id")
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if c.Query("featured") == "true" {
		q = q.Where("featured = ?", true)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

// GetMenuInventory -> back-office, termasuk item yang sedang tidak tersedia
func (mc *MenuController) GetMenuInventory(c *gin.Context) {
	var menus []models.MenuItem
	if err := mc.DB.WithContext(c.Request.Context()).Order("category, id").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu inventory", menus)
}

// UpdateMenuAvailability -> item yang dimatikan hilang dari /menu dan tidak bisa masuk keranjang
func (mc *MenuController) UpdateMenuAvailability(c *gin.Context) {
	var body struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.WithContext(c.Request.Context()).First(&item, "id = ?", c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	item.Available = *body.Available
	if err := mc.DB.WithContext(c.Request.Context()).Model(&item).Update("available", item.Available).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Menu item %s available=%v", item.ID, item.Available)
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// UpdateProduct -> stok dan status featured produk marketplace
func (mc *MenuController) UpdateProduct(c *gin.Context) {
	var body struct {
		InStock  *bool `json:"in_stock"`
		Featured *bool `json:"featured"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.InStock == nil && body.Featured == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nothing to update"))
		return
	}

	var product models.Product
	if err := mc.DB.WithContext(c.Request.Context()).First(&product, "id = ?", c.Param("product_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("product not found"))
		return
	}

	updates := map[string]interface{}{}
	if body.InStock != nil {
		product.InStock = *body.InStock
		updates["in_stock"] = product.InStock
	}
	if body.Featured != nil {
		product.Featured = *body.Featured
		updates["featured"] = product.Featured
	}
	if err := mc.DB.WithContext(c.Request.Context()).Model(&product).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

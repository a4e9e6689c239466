package controllers

import (
	"net/http"

	"brista-coffee/models"

	"github.com/gin-gonic/gin"
)

type menuRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Price       float64                   `json:"price"`
	Category    string                    `json:"category"`
	Tag         string                    `json:"tag"`
	Image_url   string                    `json:"image_url"`
	Available   *bool                     `json:"available"`
	Recipe      []models.RecipeIngredient `json:"recipe"`
}

func (ctl *Controller) GetMenus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		allMenus, err := ctl.Catalog.List(ctx, c.Query("category"))
		if err != nil {
			ctl.abort(c, err, "error occurred while listing the menu items")
			return
		}
		c.JSON(http.StatusOK, allMenus)
	}
}

func (ctl *Controller) GetMenu() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		menu, err := ctl.Catalog.Get(ctx, c.Param("menu_id"))
		if err != nil {
			ctl.abort(c, err, "error occurred while fetching the menu item")
			return
		}
		c.JSON(http.StatusOK, menu)
	}
}

func (ctl *Controller) CreateMenu() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req menuRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		item := models.MenuItem{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			Tag:         req.Tag,
			Image_url:   req.Image_url,
			Available:   req.Available == nil || *req.Available,
			Recipe:      req.Recipe,
		}
		menu, err := ctl.Catalog.Create(ctx, item)
		if err != nil {
			ctl.abort(c, err, "menu item was not created")
			return
		}
		c.JSON(http.StatusCreated, menu)
	}
}

func (ctl *Controller) UpdateMenu() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var patch models.MenuPatch
		if err := c.BindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		menu, err := ctl.Catalog.Update(ctx, c.Param("menu_id"), patch)
		if err != nil {
			ctl.abort(c, err, "menu update failed")
			return
		}
		c.JSON(http.StatusOK, menu)
	}
}

func (ctl *Controller) DeleteMenu() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := ctl.Catalog.Delete(ctx, c.Param("menu_id")); err != nil {
			ctl.abort(c, err, "menu item was not deleted")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

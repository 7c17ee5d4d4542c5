package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/models"
	"github.com/Am-duojie/amdo-s/internal/services"
	"github.com/Am-duojie/amdo-s/internal/utils"
)

// CurrentUser godoc
// @Summary Get current user
// @Description Get current user's information
// @Tags user
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=user.UserResponse}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/user [get]
func CurrentUser(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	u := userVal.(models.User)

	// Reload from DB so the response reflects writes that bypassed the cache
	var latestUser models.User
	if err := database.DB.First(&latestUser, u.ID).Error; err == nil {
		u = latestUser
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User information retrieved successfully", UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		Token:     token,
	}))
}

// UpdateProfile godoc
// @Summary Update current user's profile
// @Description Update contact phone or password for the current user
// @Tags user
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   input  body   UpdateProfileRequest  true  "Profile fields to update"
// @Success 200 {object} utils.Response{data=user.UserResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /auth/user [patch]
func UpdateProfile(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	u := userVal.(models.User)

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Password != nil {
		updates["password"] = *req.Password
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Nothing to update"))
		return
	}

	updated, err := services.UpdateUser(u.ID, updates)
	if err != nil {
		if errors.Is(err, services.ErrOptimisticLock) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update profile"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Profile updated successfully", UserResponse{
		ID:        updated.ID,
		Username:  updated.Username,
		Role:      updated.Role,
		Phone:     updated.Phone,
		CreatedAt: updated.CreatedAt,
	}))
}

package controllers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/quizmeai/quizme-backend/models"
	"github.com/quizmeai/quizme-backend/services"
	"github.com/quizmeai/quizme-backend/utils"
	"github.com/quizmeai/quizme-backend/ws"
)

const maxUploadSize = 20 * 1024 * 1024

type CreateResourceInput struct {
	Name      string              `json:"name" binding:"required"`
	Kind      models.ResourceKind `json:"type" binding:"required"`
	Content   string              `json:"content" binding:"required"`
	Size      int64               `json:"size"`
	UserID    string              `json:"userId"`
	CourseIDs []string            `json:"courseIds"`
}

type UpdateResourceInput struct {
	Name      *string   `json:"name"`
	CourseIDs *[]string `json:"courseIds"`
}

// POST /api/resources
func CreateResource(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	switch input.Kind {
	case models.ResourceDocument, models.ResourceImage, models.ResourceText:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource type"})
		return
	}

	resource := models.Resource{
		ID:        uuid.New(),
		Name:      input.Name,
		Kind:      input.Kind,
		Content:   input.Content,
		Size:      input.Size,
		UserID:    resolveUserID(c, input.UserID),
		CourseIDs: datatypes.JSONSlice[string](input.CourseIDs),
	}
	if resource.CourseIDs == nil {
		resource.CourseIDs = datatypes.JSONSlice[string]{}
	}

	if err := db.Create(&resource).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create resource", "details": err.Error()})
		return
	}

	ws.BroadcastResourceListChanged()
	c.JSON(http.StatusCreated, resource)
}

// POST /api/resources/upload — multipart upload of a study-material
// file: store in Supabase, extract text, clean it, create the resource.
// Processing progress is broadcast over the websocket hub.
func UploadResource(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := resolveUserID(c, c.PostForm("userId"))

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file attached"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds 20MB"})
		return
	}

	ext := filepath.Ext(file.Filename)
	kind, err := utils.ResourceKindFromExt(ext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resourceID := uuid.New()
	ws.SendResourceStatus(resourceID.String(), "uploading", "")

	publicURL, err := utils.UploadResourceFile(file, resourceID.String())
	if err != nil {
		ws.SendResourceStatus(resourceID.String(), "failed", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage upload failed", "details": err.Error()})
		return
	}

	ws.SendResourceStatus(resourceID.String(), "extracting", "")
	content, err := services.ExtractText(file, ext)
	if err != nil {
		ws.SendResourceStatus(resourceID.String(), "failed", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract content", "details": err.Error()})
		return
	}
	content = services.PreCleanText(content)

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	var courseIDs datatypes.JSONSlice[string]
	if id := c.PostForm("courseId"); id != "" {
		courseIDs = append(courseIDs, id)
	} else {
		courseIDs = datatypes.JSONSlice[string]{}
	}

	resource := models.Resource{
		ID:        resourceID,
		Name:      name,
		Kind:      kind,
		Content:   content,
		Size:      file.Size,
		FilePath:  publicURL,
		UserID:    userID,
		CourseIDs: courseIDs,
	}
	if err := db.Create(&resource).Error; err != nil {
		ws.SendResourceStatus(resourceID.String(), "failed", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save resource", "details": err.Error()})
		return
	}

	ws.SendResourceStatus(resourceID.String(), "ready", "")
	ws.BroadcastResourceListChanged()
	c.JSON(http.StatusCreated, resource)
}

// GET /api/resources/:id
func GetResource(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var resource models.Resource
	if err := db.First(&resource, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}
	c.JSON(http.StatusOK, resource)
}

// GET /api/resources — all resources for a user, newest first, optionally
// filtered by course membership.
func GetResources(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := resolveUserID(c, "")

	var resources []models.Resource
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&resources).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch resources", "details": err.Error()})
		return
	}

	if courseID := c.Query("courseId"); courseID != "" {
		filtered := make([]models.Resource, 0, len(resources))
		for _, r := range resources {
			if r.HasCourse(courseID) {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}

	c.JSON(http.StatusOK, resources)
}

// PUT /api/resources/:id — partial patch of name and/or course set.
func UpdateResource(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input UpdateResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var resource models.Resource
	if err := db.First(&resource, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil && *input.Name != "" {
		updates["name"] = *input.Name
	}
	if input.CourseIDs != nil {
		updates["course_ids"] = datatypes.JSONSlice[string](*input.CourseIDs)
	}

	if len(updates) > 0 {
		if err := db.Model(&resource).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update resource", "details": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, resource)
}

// DELETE /api/resources/:id
func DeleteResource(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	var resource models.Resource
	if err := db.First(&resource, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}

	if err := db.Delete(&models.Resource{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete resource", "details": err.Error()})
		return
	}

	// Stored file cleanup is best effort; the record is already gone.
	if resource.FilePath != "" {
		_ = utils.DeleteResourceFile(resource.FilePath)
	}

	ws.BroadcastResourceListChanged()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clearpointhq/client-portal-api/internal/constants"
	"github.com/clearpointhq/client-portal-api/internal/models"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"github.com/clearpointhq/client-portal-api/internal/services"
	"github.com/clearpointhq/client-portal-api/internal/vaultcrypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ActionItemHandlerTestSuite defines the test suite for ActionItemHandler
type ActionItemHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ActionItemHandler
}

// SetupTest runs before each test
func (suite *ActionItemHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Milestone{},
		&models.ActionItem{},
		&models.ActionStatusHistory{},
		&models.ActionSecureResponse{},
		&models.Notification{},
		&models.ActivityLog{},
	)
	suite.Require().NoError(err)

	key := bytes.Repeat([]byte{0x24}, 32)
	cipher, err := vaultcrypto.New(key)
	suite.Require().NoError(err)

	itemRepo := repository.NewActionItemRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	vaultRepo := repository.NewSecureResponseRepository(suite.db)
	notificationRepo := repository.NewNotificationRepository(suite.db)
	activityRepo := repository.NewActivityLogRepository(suite.db)

	notificationSink := services.NewDBNotificationSink(notificationRepo)
	activitySink := services.NewDBActivitySink(activityRepo)
	transitionService := services.NewTransitionService(itemRepo, notificationSink, activitySink)
	vaultService := services.NewVaultService(itemRepo, vaultRepo, userRepo, cipher, activitySink)

	suite.handler = NewActionItemHandler(transitionService, vaultService, itemRepo, activityRepo)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ActionItemHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data
func (suite *ActionItemHandlerTestSuite) createTestUser(email string, role models.Role) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.db.Create(user)
	return user
}

func (suite *ActionItemHandlerTestSuite) createTestProject(clientID uint64) *models.Project {
	project := &models.Project{
		Name:     "Test Project",
		Status:   models.ProjectStatusActive,
		ClientID: clientID,
	}
	suite.db.Create(project)
	return project
}

func (suite *ActionItemHandlerTestSuite) createTestItem(projectID, creatorID uint64, visibleToClient bool) *models.ActionItem {
	item := &models.ActionItem{
		Title:           "Test Item",
		Status:          models.ActionStatusPending,
		Priority:        models.PriorityMedium,
		ProjectID:       &projectID,
		CreatedBy:       creatorID,
		VisibleToClient: visibleToClient,
	}
	suite.db.Create(item)
	return item
}

// Helper function to create authenticated context
func (suite *ActionItemHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64, role models.Role) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)
	c.Set(constants.ContextKeyUserRole, role)

	return c, w
}

// Helper function to set item context (simulates RequireActionItem middleware)
func (suite *ActionItemHandlerTestSuite) setItemContext(c *gin.Context, itemID uint64) {
	var item models.ActionItem
	err := suite.db.
		Preload("Project").
		Preload("Project.Client").
		Preload("Assignee").
		First(&item, itemID).Error
	suite.Require().NoError(err)
	c.Set(constants.ContextKeyActionItem, item)
}

// TestListActionItems_Unauthorized tests listing without authentication
func (suite *ActionItemHandlerTestSuite) TestListActionItems_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/action-items", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListActionItems(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestListActionItems_StaffSeesAll tests unrestricted staff listing
func (suite *ActionItemHandlerTestSuite) TestListActionItems_StaffSeesAll() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	suite.createTestItem(project.ID, manager.ID, false)
	suite.createTestItem(project.ID, manager.ID, true)

	c, w := suite.createAuthContext("GET", "/api/action-items", nil, manager.ID, models.RoleManager)

	suite.handler.ListActionItems(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	items := response["action_items"].([]interface{})
	assert.Len(suite.T(), items, 2)
}

// TestListActionItems_ClientScope tests that clients only see their own or
// client-visible items
func (suite *ActionItemHandlerTestSuite) TestListActionItems_ClientScope() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	other := suite.createTestUser("other@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	otherProject := suite.createTestProject(other.ID)

	visible := suite.createTestItem(project.ID, manager.ID, true)
	suite.createTestItem(project.ID, manager.ID, false)
	suite.createTestItem(otherProject.ID, manager.ID, true)

	c, w := suite.createAuthContext("GET", "/api/action-items", nil, client.ID, models.RoleClient)

	suite.handler.ListActionItems(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	items := response["action_items"].([]interface{})
	suite.Require().Len(items, 1)

	first := items[0].(map[string]interface{})
	assert.Equal(suite.T(), float64(visible.ID), first["id"])
}

// TestGetActionItem_Success tests item retrieval by staff
func (suite *ActionItemHandlerTestSuite) TestGetActionItem_Success() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, false)

	c, w := suite.createAuthContext("GET", "/api/action-items/1", nil, manager.ID, models.RoleManager)
	suite.setItemContext(c, item.ID)

	suite.handler.GetActionItem(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), item.Title, response["title"])
}

// TestGetActionItem_UnrelatedClientGets404 tests that item existence is not
// leaked to unrelated clients
func (suite *ActionItemHandlerTestSuite) TestGetActionItem_UnrelatedClientGets404() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	stranger := suite.createTestUser("stranger@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, true)

	c, w := suite.createAuthContext("GET", "/api/action-items/1", nil, stranger.ID, models.RoleClient)
	suite.setItemContext(c, item.ID)

	suite.handler.GetActionItem(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestGetActionItem_ClientVisibleOnOwnProject tests the client read path
func (suite *ActionItemHandlerTestSuite) TestGetActionItem_ClientVisibleOnOwnProject() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, true)

	c, w := suite.createAuthContext("GET", "/api/action-items/1", nil, client.ID, models.RoleClient)
	suite.setItemContext(c, item.ID)

	suite.handler.GetActionItem(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestGetActionItem_HiddenFromClient tests that hidden items on the client's
// own project 404
func (suite *ActionItemHandlerTestSuite) TestGetActionItem_HiddenFromClient() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, false)

	c, w := suite.createAuthContext("GET", "/api/action-items/1", nil, client.ID, models.RoleClient)
	suite.setItemContext(c, item.ID)

	suite.handler.GetActionItem(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateStatus_Success tests a staff transition over HTTP
func (suite *ActionItemHandlerTestSuite) TestUpdateStatus_Success() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, false)

	requestBody := map[string]interface{}{
		"new_status": "IN_PROGRESS",
		"summary":    "Started work",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/action-items/1/status", body, manager.ID, models.RoleManager)
	suite.setItemContext(c, item.ID)

	suite.handler.UpdateStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	itemBody := response["item"].(map[string]interface{})
	assert.Equal(suite.T(), "IN_PROGRESS", itemBody["status"])
	history := response["history"].(map[string]interface{})
	assert.Equal(suite.T(), "PENDING", history["previous_status"])
}

// TestUpdateStatus_MissingSummary tests request validation
func (suite *ActionItemHandlerTestSuite) TestUpdateStatus_MissingSummary() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, false)

	requestBody := map[string]interface{}{
		"new_status": "IN_PROGRESS",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/action-items/1/status", body, manager.ID, models.RoleManager)
	suite.setItemContext(c, item.ID)

	suite.handler.UpdateStatus(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateStatus_ClientOverdueForbidden tests the staff-only status over
// HTTP
func (suite *ActionItemHandlerTestSuite) TestUpdateStatus_ClientOverdueForbidden() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, true)

	requestBody := map[string]interface{}{
		"new_status": "OVERDUE",
		"summary":    "Flagging my own item",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/action-items/1/status", body, client.ID, models.RoleClient)
	suite.setItemContext(c, item.ID)

	suite.handler.UpdateStatus(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestUpdateStatus_NotFoundInContext tests when the item is not in context
func (suite *ActionItemHandlerTestSuite) TestUpdateStatus_NotFoundInContext() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)

	c, w := suite.createAuthContext("POST", "/api/action-items/1/status", []byte("{}"), manager.ID, models.RoleManager)

	suite.handler.UpdateStatus(c)

	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

// TestSubmitSecureResponse_Success tests a secure submission over HTTP
func (suite *ActionItemHandlerTestSuite) TestSubmitSecureResponse_Success() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := &models.ActionItem{
		Title:                  "Provide credentials",
		Status:                 models.ActionStatusPending,
		ProjectID:              &project.ID,
		AssignedTo:             &client.ID,
		CreatedBy:              manager.ID,
		RequiresSecureResponse: true,
		SecurePrompt:           "Enter the password",
		SecureRetentionPolicy:  models.RetentionUntilDeleted,
	}
	suite.db.Create(item)

	requestBody := map[string]interface{}{"value": "hunter2"}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/action-items/1/secure", body, client.ID, models.RoleClient)
	suite.setItemContext(c, item.ID)

	suite.handler.SubmitSecureResponse(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// The response body never echoes the submitted value
	assert.NotContains(suite.T(), w.Body.String(), "hunter2")
}

// TestSubmitSecureResponse_NotEnabled tests submission against a plain item
func (suite *ActionItemHandlerTestSuite) TestSubmitSecureResponse_NotEnabled() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, true)

	requestBody := map[string]interface{}{"value": "hunter2"}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/action-items/1/secure", body, client.ID, models.RoleClient)
	suite.setItemContext(c, item.ID)

	suite.handler.SubmitSecureResponse(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetSecureResponse_Success tests staff retrieval over HTTP
func (suite *ActionItemHandlerTestSuite) TestGetSecureResponse_Success() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := &models.ActionItem{
		Title:                  "Provide credentials",
		Status:                 models.ActionStatusPending,
		ProjectID:              &project.ID,
		AssignedTo:             &client.ID,
		CreatedBy:              manager.ID,
		RequiresSecureResponse: true,
		SecurePrompt:           "Enter the password",
		SecureRetentionPolicy:  models.RetentionUntilDeleted,
	}
	suite.db.Create(item)

	// Submit first
	requestBody := map[string]interface{}{"value": "hunter2"}
	body, _ := json.Marshal(requestBody)
	c, w := suite.createAuthContext("POST", "/api/action-items/1/secure", body, client.ID, models.RoleClient)
	suite.setItemContext(c, item.ID)
	suite.handler.SubmitSecureResponse(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	c, w = suite.createAuthContext("GET", "/api/action-items/1/secure", nil, manager.ID, models.RoleManager)
	suite.setItemContext(c, item.ID)

	suite.handler.GetSecureResponse(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "hunter2", response["value"])
	assert.Equal(suite.T(), "Enter the password", response["prompt"])
}

// TestGetSecureResponse_NoSubmission tests retrieval before submission
func (suite *ActionItemHandlerTestSuite) TestGetSecureResponse_NoSubmission() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := &models.ActionItem{
		Title:                  "Provide credentials",
		Status:                 models.ActionStatusPending,
		ProjectID:              &project.ID,
		CreatedBy:              manager.ID,
		RequiresSecureResponse: true,
		SecureRetentionPolicy:  models.RetentionUntilDeleted,
	}
	suite.db.Create(item)

	c, w := suite.createAuthContext("GET", "/api/action-items/1/secure", nil, manager.ID, models.RoleManager)
	suite.setItemContext(c, item.ID)

	suite.handler.GetSecureResponse(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestDeleteSecureResponse_Success tests the privileged delete over HTTP
func (suite *ActionItemHandlerTestSuite) TestDeleteSecureResponse_Success() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := &models.ActionItem{
		Title:                  "Provide credentials",
		Status:                 models.ActionStatusPending,
		ProjectID:              &project.ID,
		AssignedTo:             &client.ID,
		CreatedBy:              manager.ID,
		RequiresSecureResponse: true,
		SecureRetentionPolicy:  models.RetentionUntilDeleted,
	}
	suite.db.Create(item)

	requestBody := map[string]interface{}{"value": "hunter2"}
	body, _ := json.Marshal(requestBody)
	c, w := suite.createAuthContext("POST", "/api/action-items/1/secure", body, client.ID, models.RoleClient)
	suite.setItemContext(c, item.ID)
	suite.handler.SubmitSecureResponse(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	c, w = suite.createAuthContext("DELETE", "/api/action-items/1/secure", nil, manager.ID, models.RoleManager)
	suite.setItemContext(c, item.ID)

	suite.handler.DeleteSecureResponse(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.ActionSecureResponse{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestListActivity_Success tests the staff activity trail read
func (suite *ActionItemHandlerTestSuite) TestListActivity_Success() {
	manager := suite.createTestUser("manager@example.com", models.RoleManager)
	client := suite.createTestUser("client@example.com", models.RoleClient)
	project := suite.createTestProject(client.ID)
	item := suite.createTestItem(project.ID, manager.ID, false)

	requestBody := map[string]interface{}{
		"new_status": "COMPLETED",
		"summary":    "Wrapped up",
	}
	body, _ := json.Marshal(requestBody)
	c, w := suite.createAuthContext("POST", "/api/action-items/1/status", body, manager.ID, models.RoleManager)
	suite.setItemContext(c, item.ID)
	suite.handler.UpdateStatus(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	c, w = suite.createAuthContext("GET", "/api/action-items/1/activity", nil, manager.ID, models.RoleManager)
	suite.setItemContext(c, item.ID)

	suite.handler.ListActivity(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	activity := response["activity"].([]interface{})
	suite.Require().Len(activity, 1)
	first := activity[0].(map[string]interface{})
	assert.Equal(suite.T(), "status_changed", first["action"])
}

// TestSuite runs the test suite
func TestActionItemHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ActionItemHandlerTestSuite))
}

package actions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/netops-console/vyos_console_api/model"
)

// GetDashboard godoc
// swagger:route GET /dashboards/{name} dashboards get_dashboard
// Get dashboard
//
// Get the layout of a dashboard, staged changes included
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: Dashboard
//	  500: RequestErrorResp
func (actions *Actions) GetDashboard(c *gin.Context) {
	dash, err := actions.service.GetDashboard(getSessionID(c), c.Param("name"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// AddCard godoc
// swagger:route POST /dashboards/{name}/cards dashboards add_card
// Add card
//
// Stage a new card. Without a column the card takes the first free slot.
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: Dashboard
//	  400: RequestErrorResp
//	  409: RequestErrorResp
//	  422: RequestErrorResp
func (actions *Actions) AddCard(c *gin.Context) {
	var req model.AddCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := actions.service.AddCard(getSessionID(c), c.Param("name"), req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// DropCard godoc
// swagger:route POST /dashboards/{name}/cards/{id}/drop dashboards drop_card
// Drop card
//
// Stage the outcome of a drag of the card over another card or a column
func (actions *Actions) DropCard(c *gin.Context) {
	var req model.DropCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := actions.service.DropCard(getSessionID(c), c.Param("name"), c.Param("id"), req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// ResizeCard godoc
func (actions *Actions) ResizeCard(c *gin.Context) {
	var req model.ResizeCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := actions.service.ResizeCard(getSessionID(c), c.Param("name"), c.Param("id"), req.Span)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// RemoveCard godoc
func (actions *Actions) RemoveCard(c *gin.Context) {
	dash, err := actions.service.RemoveCard(getSessionID(c), c.Param("name"), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// SaveDashboard godoc
// swagger:route POST /dashboards/{name}/save dashboards save_dashboard
// Save dashboard
//
// Persist the staged layout of the dashboard
//
//	Responses:
//	  200: Dashboard
//	  409: RequestErrorResp
//	  500: RequestErrorResp
func (actions *Actions) SaveDashboard(c *gin.Context) {
	dash, err := actions.service.SaveDashboard(getSessionID(c), c.Param("name"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// CancelDashboard godoc
func (actions *Actions) CancelDashboard(c *gin.Context) {
	dash, err := actions.service.CancelDashboard(getSessionID(c), c.Param("name"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

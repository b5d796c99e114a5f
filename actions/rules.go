package actions

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.com/netops-console/vyos_console_api/model"
	"gitlab.com/netops-console/vyos_console_api/reorder"
)

// GetRules godoc
// swagger:route GET /rules/{kind}/{name} rules get_rules
// Get rules
//
// Get an ordered rule list, staged order included
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: RuleList
//	  400: RequestErrorResp
//	  502: RequestErrorResp
func (actions *Actions) GetRules(c *gin.Context) {
	list, err := actions.service.GetRules(c.Request.Context(), getSessionID(c), c.Param("kind"), c.Param("name"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// dropFromEvents replays the drag events sent by the console. A nil drop
// means the drag was cancelled or released outside of any rule.
func dropFromEvents(events []model.DragEvent) (*reorder.Drop, error) {
	parsed := make([]reorder.Event, 0, len(events))
	for _, ev := range events {
		t, err := reorder.ParseEventType(ev.Type)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, reorder.Event{Type: t, ID: ev.ID})
	}
	return reorder.Replay(parsed), nil
}

// MoveRule godoc
// swagger:route POST /rules/{kind}/{name}/move rules move_rule
// Move rule
//
// Stage a move of a rule, either from the drag events of the console or
// from a source/target pair of rule numbers
//
//	Consumes:
//	- application/json
//
//	Responses:
//	  200: RuleList
//	  400: RequestErrorResp
//	  409: RequestErrorResp
func (actions *Actions) MoveRule(c *gin.Context) {
	var req model.MoveRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	source, target := req.Source, req.Target
	if len(req.Events) > 0 {
		drop, err := dropFromEvents(req.Events)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}
		if drop == nil {
			actions.GetRules(c)
			return
		}
		if source, err = strconv.Atoi(drop.Source); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid dragged rule number")
			return
		}
		if target, err = strconv.Atoi(drop.Target); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid target rule number")
			return
		}
	}
	if source <= 0 || target <= 0 {
		abortWithError(c, http.StatusBadRequest, "source and target rule numbers are required")
		return
	}

	list, err := actions.service.StageRuleMove(c.Request.Context(), getSessionID(c), c.Param("kind"), c.Param("name"), source, target)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SaveRuleOrder godoc
// swagger:route POST /rules/{kind}/{name}/save rules save_rule_order
// Save rule order
//
// Send the staged order to the router
//
//	Responses:
//	  200: RuleList
//	  409: RequestErrorResp
//	  422: RequestErrorResp
//	  502: RequestErrorResp
func (actions *Actions) SaveRuleOrder(c *gin.Context) {
	list, err := actions.service.CommitRuleOrder(c.Request.Context(), getSessionID(c), c.Param("kind"), c.Param("name"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CancelRuleOrder godoc
func (actions *Actions) CancelRuleOrder(c *gin.Context) {
	list, err := actions.service.CancelRuleOrder(c.Request.Context(), getSessionID(c), c.Param("kind"), c.Param("name"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PreviewRuleOrder godoc
func (actions *Actions) PreviewRuleOrder(c *gin.Context) {
	preview, err := actions.service.PreviewRuleOrder(getSessionID(c), c.Param("kind"), c.Param("name"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// AddRule godoc
// swagger:route POST /rules/{kind}/{name} rules add_rule
// Add rule
//
// Create a rule on the router
//
//	Consumes:
//	- application/json
//
//	Responses:
//	  200: RuleList
//	  400: RequestErrorResp
//	  409: RequestErrorResp
//	  422: RequestErrorResp
func (actions *Actions) AddRule(c *gin.Context) {
	var req model.AddRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	rule := model.Rule{Number: req.RuleNumber, Fields: req.Fields}
	if rule.Fields == nil {
		rule.Fields = map[string]interface{}{}
	}

	list, err := actions.service.AddRule(c.Request.Context(), getSessionID(c), c.Param("kind"), c.Param("name"), rule)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteRule godoc
func (actions *Actions) DeleteRule(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid rule number")
		return
	}

	list, err := actions.service.DeleteRule(c.Request.Context(), getSessionID(c), c.Param("kind"), c.Param("name"), number)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

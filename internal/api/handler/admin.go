package handler

import (
	"errors"
	"strconv"

	"greenloop/internal/models"
	"greenloop/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAdmin struct {
	container *do.Injector
}

type decisionRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type claimStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type adjustPointsRequest struct {
	Points int     `json:"points"`
	CO2    float64 `json:"co2"`
	Reason string  `json:"reason"`
}

type submissionDecisionRequest struct {
	PointsValue int     `json:"points_value"`
	CO2Impact   float64 `json:"co2_impact"`
	Reason      string  `json:"reason"`
}

func (gr *groupAdmin) GetPendingLogs(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceActionLog, err := do.Invoke[*services.ServiceActionLog](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	limit, offset := pagination(c)
	logs, err := serviceActionLog.GetPendingLogs(ctx, limit, offset)
	return httpx.RestAbort(c, logs, err)
}

func (gr *groupAdmin) ApproveLog(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	logID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	var req decisionRequest
	//nolint:errcheck
	c.Bind(&req)

	serviceActionLog, err := do.Invoke[*services.ServiceActionLog](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	actionLog, err := serviceActionLog.ApproveLog(ctx, admin, logID, req.Notes)
	return httpx.RestAbort(c, actionLog, err)
}

func (gr *groupAdmin) RejectLog(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	logID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	var req decisionRequest
	//nolint:errcheck
	c.Bind(&req)

	serviceActionLog, err := do.Invoke[*services.ServiceActionLog](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	actionLog, err := serviceActionLog.RejectLog(ctx, admin, logID, req.Reason)
	return httpx.RestAbort(c, actionLog, err)
}

func (gr *groupAdmin) GetPendingSubmissions(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAction, err := do.Invoke[*services.ServiceAction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	submissions, err := serviceAction.GetPendingSubmissions(ctx)
	return httpx.RestAbort(c, submissions, err)
}

func (gr *groupAdmin) ApproveSubmission(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	actionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	var req submissionDecisionRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceAction, err := do.Invoke[*services.ServiceAction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	action, err := serviceAction.ApproveSubmission(ctx, admin, actionID, req.PointsValue, req.CO2Impact)
	return httpx.RestAbort(c, action, err)
}

func (gr *groupAdmin) RejectSubmission(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	actionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	var req submissionDecisionRequest
	//nolint:errcheck
	c.Bind(&req)

	serviceAction, err := do.Invoke[*services.ServiceAction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceAction.RejectSubmission(ctx, admin, actionID, req.Reason)
	return httpx.RestAbort(c, map[string]interface{}{"rejected": err == nil}, err)
}

func (gr *groupAdmin) DeactivateAction(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	actionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceAction, err := do.Invoke[*services.ServiceAction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceAction.DeactivateAction(ctx, actionID)
	return httpx.RestAbort(c, map[string]interface{}{"deactivated": err == nil}, err)
}

// RemoveAction hard-deletes an unused catalog entry; entries that have been
// logged can only be deactivated, so those report deleted=false.
func (gr *groupAdmin) RemoveAction(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	actionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceAction, err := do.Invoke[*services.ServiceAction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	deleted, err := serviceAction.RemoveAction(ctx, actionID)
	return httpx.RestAbort(c, map[string]interface{}{"deleted": deleted, "deactivated": err == nil && !deleted}, err)
}

func (gr *groupAdmin) GetClaims(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	status := c.QueryParam("status")
	if status == "" {
		status = models.CLAIM_PENDING
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	limit, offset := pagination(c)
	claims, err := serviceReward.GetClaimsByStatus(ctx, status, limit, offset)
	return httpx.RestAbort(c, claims, err)
}

func (gr *groupAdmin) UpdateClaimStatus(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	claimID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	var req claimStatusRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var claim *models.UserLevelReward
	switch req.Status {
	case models.CLAIM_APPROVED:
		claim, err = serviceReward.ApproveClaim(ctx, admin, claimID, req.Notes)
	case models.CLAIM_REJECTED:
		claim, err = serviceReward.RejectClaim(ctx, admin, claimID, req.Notes)
	case models.CLAIM_DELIVERED:
		claim, err = serviceReward.MarkDelivered(ctx, admin, claimID, req.Notes)
	default:
		err = errorx.Wrap(errors.New("unknown claim status"), errorx.Validation)
	}

	return httpx.RestAbort(c, claim, err)
}

func (gr *groupAdmin) RebuildLeaderboards(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceLeaderboard.RebuildLeaderboards(ctx)
	return httpx.RestAbort(c, map[string]interface{}{"rebuilt": err == nil}, err)
}

func (gr *groupAdmin) AdjustPoints(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	var req adjustPointsRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	txn, err := serviceUser.AdjustPoints(ctx, admin, userID, req.Points, req.CO2, req.Reason)
	return httpx.RestAbort(c, txn, err)
}

func (gr *groupAdmin) AuditLedger(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	report, err := serviceUser.AuditLedger(ctx, userID)
	return httpx.RestAbort(c, report, err)
}

func (gr *groupAdmin) ReconcileLedger(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveAdmin(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	report, err := serviceUser.ReconcileLedger(ctx, userID)
	return httpx.RestAbort(c, report, err)
}

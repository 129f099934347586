package handler

import (
	"greenloop/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAction struct {
	container *do.Injector
}

func (gr *groupAction) GetActions(c echo.Context) error {
	ctx := c.Request().Context()

	serviceAction, err := do.Invoke[*services.ServiceAction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	actions, err := serviceAction.GetActiveActions(ctx)
	return httpx.RestAbort(c, actions, err)
}

type logActionRequest struct {
	Notes string `json:"notes"`
}

func (gr *groupAction) LogAction(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req logActionRequest
	// body is optional; notes default to empty
	//nolint:errcheck
	c.Bind(&req)

	serviceActionLog, err := do.Invoke[*services.ServiceActionLog](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	actionLog, err := serviceActionLog.LogAction(ctx, user, c.Param("slug"), req.Notes)
	return httpx.RestAbort(c, actionLog, err)
}

type submitActionRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	PointsValue int     `json:"points_value"`
	CO2Impact   float64 `json:"co2_impact"`
}

func (gr *groupAction) SubmitAction(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req submitActionRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceAction, err := do.Invoke[*services.ServiceAction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	action, err := serviceAction.SubmitAction(ctx, user, req.Title, req.Description, req.Category, req.PointsValue, req.CO2Impact)
	return httpx.RestAbort(c, action, err)
}

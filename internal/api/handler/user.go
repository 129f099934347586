package handler

import (
	"greenloop/internal/models"
	"greenloop/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupUser struct {
	container *do.Injector
}

func (gr *groupUser) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	user, err = serviceUser.Me(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	authentication, err := do.Invoke[*services.Authentication](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	token, err := authentication.CreateToken(&models.UserFromAuth{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	resp := map[string]interface{}{
		"token": token,
		"user":  user,
	}

	// Tip failures never block the profile.
	if serviceTip, err := do.Invoke[*services.ServiceTip](gr.container); err == nil {
		resp["tip"] = serviceTip.Pick()
	}

	return httpx.RestAbort(c, resp, nil)
}

func (gr *groupUser) GetTransactions(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	limit, offset := pagination(c)
	txs, err := serviceUser.GetUserTransactions(ctx, user.ID, limit, offset)
	return httpx.RestAbort(c, txs, err)
}

func (gr *groupUser) GetActionLogs(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceActionLog, err := do.Invoke[*services.ServiceActionLog](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	limit, offset := pagination(c)
	logs, err := serviceActionLog.GetUserActionLogs(ctx, user.ID, limit, offset)
	return httpx.RestAbort(c, logs, err)
}

package handler

import (
	"strconv"

	"greenloop/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupReward struct {
	container *do.Injector
}

func (gr *groupReward) GetRewards(c echo.Context) error {
	ctx := c.Request().Context()

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	rewards, err := serviceReward.GetLevelRewards(ctx)
	return httpx.RestAbort(c, rewards, err)
}

func (gr *groupReward) GetMyClaims(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	claims, err := serviceReward.GetUserClaims(ctx, user.ID)
	return httpx.RestAbort(c, claims, err)
}

func (gr *groupReward) ClaimReward(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	rewardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	claim, err := serviceReward.ClaimReward(ctx, user, rewardID)
	return httpx.RestAbort(c, claim, err)
}

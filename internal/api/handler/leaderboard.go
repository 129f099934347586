package handler

import (
	"greenloop/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) GetOverallLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	leaderboard, err := serviceLeaderboard.GetOverallLeaderboard(ctx, user)
	return httpx.RestAbort(c, leaderboard, err)
}

func (gr *groupLeaderboard) GetWeeklyLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	leaderboard, err := serviceLeaderboard.GetWeeklyLeaderboard(ctx, user)
	return httpx.RestAbort(c, leaderboard, err)
}

func (gr *groupLeaderboard) GetRandomTip(c echo.Context) error {
	serviceTip, err := do.Invoke[*services.ServiceTip](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, serviceTip.Pick(), nil)
}

package handler

import (
	"net/http"

	"greenloop/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🌱")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}

		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated requests.

		u := groupUser{cfg.Container}
		routesAPIv1.GET("/user/me", u.Me)
		routesAPIv1.GET("/user/transactions", u.GetTransactions)
		routesAPIv1.GET("/user/logs", u.GetActionLogs)

		a := groupAction{cfg.Container}
		routesAPIv1.GET("/actions", a.GetActions)
		routesAPIv1.POST("/actions/submit", a.SubmitAction)
		routesAPIv1.POST("/actions/:slug/log", a.LogAction)

		rw := groupReward{cfg.Container}
		routesAPIv1.GET("/rewards", rw.GetRewards)
		routesAPIv1.GET("/rewards/claims", rw.GetMyClaims)
		routesAPIv1.POST("/rewards/:id/claim", rw.ClaimReward)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/overall", l.GetOverallLeaderboard)
		routesAPIv1.GET("/leaderboard/weekly", l.GetWeeklyLeaderboard)
		routesAPIv1.GET("/tips/random", l.GetRandomTip)

		routesAPIv1Admin := routesAPIv1.Group("/admin")
		{
			ad := groupAdmin{cfg.Container}
			routesAPIv1Admin.GET("/logs/pending", ad.GetPendingLogs)
			routesAPIv1Admin.POST("/logs/:id/approve", ad.ApproveLog)
			routesAPIv1Admin.POST("/logs/:id/reject", ad.RejectLog)

			routesAPIv1Admin.GET("/submissions/pending", ad.GetPendingSubmissions)
			routesAPIv1Admin.POST("/submissions/:id/approve", ad.ApproveSubmission)
			routesAPIv1Admin.POST("/submissions/:id/reject", ad.RejectSubmission)

			routesAPIv1Admin.POST("/actions/:id/deactivate", ad.DeactivateAction)
			routesAPIv1Admin.DELETE("/actions/:id", ad.RemoveAction)

			routesAPIv1Admin.GET("/claims", ad.GetClaims)
			routesAPIv1Admin.PUT("/claims/:id/status", ad.UpdateClaimStatus)

			routesAPIv1Admin.POST("/leaderboard/rebuild", ad.RebuildLeaderboards)

			routesAPIv1Admin.POST("/users/:id/adjust", ad.AdjustPoints)
			routesAPIv1Admin.GET("/users/:id/audit", ad.AuditLedger)
			routesAPIv1Admin.POST("/users/:id/reconcile", ad.ReconcileLedger)
		}
	}

	return r, nil
}

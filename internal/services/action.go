package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"greenloop/internal/datastore"
	"greenloop/internal/models"
	"greenloop/internal/pkg/caching"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type ServiceAction struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	serviceUser        *ServiceUser
}

func NewServiceAction(container *do.Injector) (*ServiceAction, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAction{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceUser}, nil
}

func (service *ServiceAction) GetActiveActions(ctx context.Context) ([]models.SustainabilityAction, error) {
	callback := func() ([]models.SustainabilityAction, error) {
		actions, err := datastore.GetActiveActions(ctx, service.readonlyPostgresDB)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return actions, err
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyActiveActions(), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceAction) GetActionBySlug(ctx context.Context, slug string) (*models.SustainabilityAction, error) {
	callback := func() (*models.SustainabilityAction, error) {
		return datastore.GetActionBySlug(ctx, service.readonlyPostgresDB, strings.ToLower(slug))
	}

	action, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyAction(slug), CACHE_TTL_5_MINS, callback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("action not found"), errorx.NotExist)
	}
	return action, err
}

// SubmitAction stores a user-proposed action. It enters the catalog inactive
// and invisible until an admin approves it.
func (service *ServiceAction) SubmitAction(ctx context.Context, user *models.User, title, description, category string, pointsValue int, co2Impact float64) (*models.SustainabilityAction, error) {
	if title == "" {
		return nil, errorx.Wrap(errors.New("title is required"), errorx.Validation)
	}
	if !models.ValidPointsValue(pointsValue) {
		return nil, errorx.Wrap(errors.New("points value out of range"), errorx.Validation)
	}

	now := time.Now()
	action := &models.SustainabilityAction{
		Slug:                 Slugify(title),
		Title:                title,
		Description:          description,
		Category:             category,
		PointsValue:          pointsValue,
		CO2Impact:            co2Impact,
		VerificationRequired: true,
		IsActive:             false,
		IsUserCreated:        true,
		SubmittedBy:          &user.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	action, err := datastore.CreateAction(ctx, service.postgresDB, action)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return action, nil
}

func (service *ServiceAction) GetPendingSubmissions(ctx context.Context) ([]models.SustainabilityAction, error) {
	actions, err := datastore.GetPendingSubmissions(ctx, service.readonlyPostgresDB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return actions, err
}

// ApproveSubmission activates a pending user submission, optionally
// overriding the proposed point value and CO2 impact.
func (service *ServiceAction) ApproveSubmission(ctx context.Context, admin *models.User, actionID int64, pointsValue int, co2Impact float64) (*models.SustainabilityAction, error) {
	if !models.ValidPointsValue(pointsValue) {
		return nil, errorx.Wrap(errors.New("points value out of range"), errorx.Validation)
	}

	action, err := datastore.GetActionByID(ctx, service.postgresDB, actionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("action not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	// Activating the entry also credits the submitter: one approved log plus
	// its ledger row, in the same transaction as the activation.
	awarded, err := datastore.ApproveSubmissionAward(ctx, service.postgresDB, action, pointsValue, co2Impact, admin.ID, action.Title, time.Now())
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if awarded == nil {
		return nil, errorx.Wrap(ErrAlreadyProcessed, errorx.Invalid)
	}

	log.Println("submission approved:", "action:", actionID, "admin:", admin.ID, "awarded log:", awarded.ID)
	service.ClearActionCache(ctx)

	go func() {
		ctx := context.Background()
		service.serviceUser.ClearUserCache(ctx, awarded.UserID)
		if err := service.serviceUser.UpdateLeaderboards(ctx, awarded.UserID); err != nil {
			log.Println(err)
		}
	}()

	return datastore.GetActionByID(ctx, service.postgresDB, actionID)
}

func (service *ServiceAction) RejectSubmission(ctx context.Context, admin *models.User, actionID int64, reason string) error {
	if reason == "" {
		return errorx.Wrap(errors.New("reason is required"), errorx.Validation)
	}

	ok, err := datastore.RejectSubmission(ctx, service.postgresDB, actionID, reason)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}
	if !ok {
		return errorx.Wrap(ErrAlreadyProcessed, errorx.Invalid)
	}

	log.Println("submission rejected:", "action:", actionID, "admin:", admin.ID)
	return nil
}

func (service *ServiceAction) DeactivateAction(ctx context.Context, actionID int64) error {
	err := datastore.DeactivateAction(ctx, service.postgresDB, actionID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	service.ClearActionCache(ctx)
	return nil
}

// RemoveAction deletes a catalog entry, or deactivates it when logs already
// reference it. The returned flag tells the caller which one happened.
func (service *ServiceAction) RemoveAction(ctx context.Context, actionID int64) (bool, error) {
	deleted, err := datastore.RemoveAction(ctx, service.postgresDB, actionID)
	if err != nil {
		return false, errorx.Wrap(err, errorx.Service)
	}

	service.ClearActionCache(ctx)
	return deleted, nil
}

func (service *ServiceAction) ClearActionCache(ctx context.Context) {
	if err := service.cache.Delete(ctx, DBKeyActiveActions()); err != nil {
		log.Println("clear action cache:", err)
	}
}

// Slugify lowercases a title and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

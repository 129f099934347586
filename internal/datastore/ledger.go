package datastore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"greenloop/internal/models"

	"github.com/uptrace/bun"
)

// InsertActionLogAward stores an already-approved log together with its
// ledger row and the user counter bump in one transaction. The log must
// carry its point and CO2 snapshot.
func InsertActionLogAward(ctx context.Context, db *bun.DB, log *models.ActionLog, description string) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := InsertActionLog(ctx, tx, log); err != nil {
			return err
		}

		err := InsertPointTransaction(ctx, tx, &models.PointTransaction{
			UserID:          log.UserID,
			Points:          log.PointsEarned,
			CO2:             log.CO2Saved,
			TransactionType: models.TRANSACTION_EARNED,
			ReferenceType:   models.REFERENCE_ACTION_LOG,
			ReferenceID:     strconv.FormatInt(log.ID, 10),
			Description:     description,
			CreatedAt:       log.CreatedAt,
		})
		if err != nil {
			return err
		}

		return IncrementUserTotals(ctx, tx, log.UserID, log.PointsEarned, log.CO2Saved)
	})
}

// ApproveActionLogAward flips a pending log to approved and appends the
// matching ledger row. The guarded update decides the race: when another
// verifier got there first no rows change and nothing is awarded.
func ApproveActionLogAward(ctx context.Context, db *bun.DB, log *models.ActionLog, verifierID int64, notes string, description string, now time.Time) (bool, error) {
	approved := false
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ok, err := TransitionActionLog(ctx, tx, log.ID, models.VERIFICATION_APPROVED, verifierID, notes, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		approved = true

		err = InsertPointTransaction(ctx, tx, &models.PointTransaction{
			UserID:          log.UserID,
			Points:          log.PointsEarned,
			CO2:             log.CO2Saved,
			TransactionType: models.TRANSACTION_EARNED,
			ReferenceType:   models.REFERENCE_ACTION_LOG,
			ReferenceID:     strconv.FormatInt(log.ID, 10),
			Description:     description,
			CreatedAt:       now,
		})
		if err != nil {
			return err
		}

		return IncrementUserTotals(ctx, tx, log.UserID, log.PointsEarned, log.CO2Saved)
	})
	return approved, err
}

// ApproveSubmissionAward activates a user-submitted catalog entry with the
// finalized values and, in the same transaction, writes one approved log for
// the submitter plus its ledger row and counter bump. The guarded activate
// decides the race; zero rows means nothing is awarded.
func ApproveSubmissionAward(ctx context.Context, db *bun.DB, action *models.SustainabilityAction, pointsValue int, co2Impact float64, verifierID int64, description string, now time.Time) (*models.ActionLog, error) {
	if action.SubmittedBy == nil {
		return nil, errors.New("submission has no submitter")
	}
	submitterID := *action.SubmittedBy

	var awarded *models.ActionLog
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ok, err := ActivateSubmission(ctx, tx, action.ID, pointsValue, co2Impact)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		log := &models.ActionLog{
			UserID:             submitterID,
			ActionID:           action.ID,
			PointsEarned:       pointsValue,
			CO2Saved:           co2Impact,
			VerificationStatus: models.VERIFICATION_APPROVED,
			VerifiedBy:         &verifierID,
			VerifiedAt:         &now,
			CreatedAt:          now,
		}
		if err := InsertActionLog(ctx, tx, log); err != nil {
			return err
		}

		err = InsertPointTransaction(ctx, tx, &models.PointTransaction{
			UserID:          submitterID,
			Points:          pointsValue,
			CO2:             co2Impact,
			TransactionType: models.TRANSACTION_EARNED,
			ReferenceType:   models.REFERENCE_ACTION_LOG,
			ReferenceID:     strconv.FormatInt(log.ID, 10),
			Description:     description,
			CreatedAt:       now,
		})
		if err != nil {
			return err
		}

		if err := IncrementUserTotals(ctx, tx, submitterID, pointsValue, co2Impact); err != nil {
			return err
		}

		awarded = log
		return nil
	})
	return awarded, err
}

// AppendAdjustment writes a manual ledger row and bumps the user counters
// together. Points may be negative.
func AppendAdjustment(ctx context.Context, db *bun.DB, txn *models.PointTransaction) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := InsertPointTransaction(ctx, tx, txn); err != nil {
			return err
		}
		return IncrementUserTotals(ctx, tx, txn.UserID, txn.Points, txn.CO2)
	})
}

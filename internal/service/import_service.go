package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/voting-identity/internal/events"
	apperrors "github.com/spec-kit/voting-identity/pkg/util"
)

// ImportRow is one externally parsed record from a bulk source such as a
// spreadsheet. Parsing raw bytes into rows is the ingestion collaborator's
// job, not this service's.
type ImportRow struct {
	Name    string `json:"name"`
	DNI     int64  `json:"dni"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	CanVote bool   `json:"can_vote"`
}

// ImportReport is the reconciliation outcome: added emails and per-row
// failure descriptions, both in input order.
type ImportReport struct {
	AddedEmails []string `json:"added_emails"`
	Errors      []string `json:"errors"`
}

// ImportService reconciles bulk user rows against the identity model,
// isolating failures per row.
type ImportService struct {
	identity   *IdentityService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewImportService builds the service.
func NewImportService(identity *IdentityService, dispatcher events.Dispatcher, logger *zap.Logger) *ImportService {
	return &ImportService{identity: identity, dispatcher: dispatcher, logger: logger}
}

// ImportUsers attempts every row regardless of earlier failures and reports
// the full outcome set. Each row's persistence is atomic at single-user
// granularity, so a partial run leaves no half-written records.
func (s *ImportService) ImportUsers(ctx context.Context, rows []ImportRow, parentID string) (*ImportReport, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("no rows to import", nil)
	}

	report := &ImportReport{AddedEmails: []string{}, Errors: []string{}}
	for _, row := range rows {
		if missing := missingFields(row); len(missing) > 0 {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"failed to load user %s (name: %s, dni: %s): missing fields: %s; register manually",
				valueOrNA(row.Email), valueOrNA(row.Name), dniOrNA(row.DNI),
				strings.Join(missing, ", ")))
			continue
		}

		taken, err := s.identity.EmailTaken(ctx, row.Email)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"failed to create user %s: %v", row.Email, err))
			continue
		}
		if taken {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"user %s (name: %s, dni: %s) already exists",
				row.Email, valueOrNA(row.Name), dniOrNA(row.DNI)))
			continue
		}

		result, err := s.identity.CreateUser(ctx, rowInput(row), parentID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"failed to create user %s: %v", row.Email, err))
			continue
		}
		if result.NotifyErr != nil {
			s.logger.Warn("imported user but notification failed",
				zap.String("email", row.Email),
				zap.Error(result.NotifyErr))
		}
		report.AddedEmails = append(report.AddedEmails, row.Email)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUsersImported,
			Timestamp: time.Now(),
			Payload: events.UsersImportedPayload{
				ParentID: parentID,
				Added:    len(report.AddedEmails),
				Failed:   len(report.Errors),
			},
		})
	}

	return report, nil
}

func rowInput(row ImportRow) CreateUserInput {
	return CreateUserInput{
		Name:    row.Name,
		DNI:     row.DNI,
		Email:   row.Email,
		Address: row.Address,
		City:    row.City,
		Country: row.Country,
		CanVote: row.CanVote,
	}
}

func missingFields(row ImportRow) []string {
	missing := []string{}
	if row.Name == "" {
		missing = append(missing, "name")
	}
	if row.DNI == 0 {
		missing = append(missing, "dni")
	}
	if row.Email == "" {
		missing = append(missing, "email")
	}
	return missing
}

func valueOrNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func dniOrNA(dni int64) string {
	if dni == 0 {
		return "N/A"
	}
	return strconv.FormatInt(dni, 10)
}

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/ganamos/backend/internal/repository"
)

type Repositories struct {
	Profiles          repo.Profiles
	Transactions      repo.Transactions
	Devices           repo.Devices
	PendingSpends     repo.PendingSpends
	ConnectedAccounts repo.ConnectedAccounts
	Activities        repo.Activities
	Posts             repo.Posts
	Prices            repo.Prices
	AuditReports      repo.AuditReports
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Profiles:          &profilesRepo{pool},
		Transactions:      &transactionsRepo{pool},
		Devices:           &devicesRepo{pool},
		PendingSpends:     &pendingSpendsRepo{pool},
		ConnectedAccounts: &connectedAccountsRepo{pool},
		Activities:        &activitiesRepo{pool},
		Posts:             &postsRepo{pool},
		Prices:            &pricesRepo{pool},
		AuditReports:      &auditReportsRepo{pool},
	}
}

func noRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

package config

import (
	"context"
	"log/slog"

	firestore_repo "github.com/lectern-dev/lectern/pkg/repository/firestore"
	"github.com/urfave/cli/v3"
)

type Firestore struct {
	projectID  string
	databaseID string
}

func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore project ID",
			Required:    false,
			Destination: &c.projectID,
			Category:    "Firestore",
			Sources:     cli.EnvVars("LECTERN_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Destination: &c.databaseID,
			Category:    "Firestore",
			Sources:     cli.EnvVars("LECTERN_FIRESTORE_DATABASE_ID"),
			Value:       "(default)",
		},
	}
}

func (c Firestore) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", c.projectID),
		slog.String("database_id", c.databaseID),
	)
}

func (c *Firestore) Configure(ctx context.Context) (*firestore_repo.Firestore, error) {
	return firestore_repo.New(ctx, c.projectID, c.databaseID)
}

// IsConfigured returns true if Firestore is configured
func (c *Firestore) IsConfigured() bool {
	return c.projectID != ""
}

package migrate

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/cmd/util"
	"github.com/racetelemetry/laprecorder/pkg/config"
	dbmigrate "github.com/racetelemetry/laprecorder/pkg/db/migrate"
	"github.com/racetelemetry/laprecorder/pkg/utils"
)

var showVersion bool

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&showVersion,
		"show-version",
		false,
		"only print the current schema version")
	return cmd
}

func startMigration(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	util.SetupLogger()
	if err := util.WaitForRequiredServices(ctx, utils.ExtractFromDBURL(config.DB)); err != nil {
		log.Error("database not ready", log.ErrorField(err))
		return err
	}

	if showVersion {
		version, dirty, err := dbmigrate.Version(config.DB)
		if err != nil {
			return err
		}
		log.Info("Schema version", log.Uint("version", version), log.Bool("dirty", dirty))
		return nil
	}
	if err := dbmigrate.MigrateDb(config.DB); err != nil {
		log.Error("Migration failed", log.ErrorField(err))
		return err
	}
	log.Info("Migration done")
	return nil
}

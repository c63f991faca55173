package record

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/cmd/util"
	"github.com/racetelemetry/laprecorder/pkg/config"
	"github.com/racetelemetry/laprecorder/pkg/model"
	"github.com/racetelemetry/laprecorder/pkg/processing"
	"github.com/racetelemetry/laprecorder/pkg/processing/lap"
	"github.com/racetelemetry/laprecorder/pkg/source/f1"
	"github.com/racetelemetry/laprecorder/pkg/source/udp"
	"github.com/racetelemetry/laprecorder/pkg/utils"
)

//nolint:funlen // by design
func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "listens for F1 telemetry and records laps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startRecording(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&config.Port,
		"port",
		"p",
		udp.DefaultPort,
		"UDP port the game sends telemetry to")
	cmd.Flags().IntVar(&config.SampleBuffer,
		"sample-buffer",
		1024,
		"number of decoded samples buffered between listener and processor")
	cmd.Flags().StringVar(&config.AutoSaveFolder,
		"auto-save-folder",
		"",
		"folder where completed laps are saved as json")
	cmd.Flags().IntVar(&config.WrapFrom,
		"wrap-from",
		lap.DefaultWrapFrom,
		"a lap starts when the distance drops from above this value")
	cmd.Flags().IntVar(&config.WrapTo,
		"wrap-to",
		lap.DefaultWrapTo,
		"... to below this value")
	cmd.Flags().IntVar(&config.JitterTolerance,
		"jitter",
		lap.DefaultJitter,
		"backward distance steps up to this many meters are ignored silently")
	cmd.Flags().IntVar(&config.ProgressEvery,
		"progress-every",
		processing.DefaultProgressEvery,
		"log progress every n samples (0 disables)")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"NATS server url, laps are published when set")
	cmd.Flags().StringVar(&config.NatsSubject,
		"nats-subject",
		"lrec.laps",
		"subject prefix for published laps")
	cmd.Flags().BoolVar(&config.EnableDB,
		"enable-db",
		false,
		"store laps in the database")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (or stdout)")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	return cmd
}

//nolint:funlen,cyclop // by design
func startRecording(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := util.SetupLogger()
	util.StartProfiling()
	util.SetupGoRoutinesDump()

	var telemetry *config.Telemetry
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(parent); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}
	defer func() {
		if telemetry != nil {
			telemetry.Shutdown()
		}
	}()

	required := []string{}
	if config.EnableDB {
		required = append(required, utils.ExtractFromDBURL(config.DB))
	}
	if config.NatsURL != "" {
		required = append(required, utils.ExtractFromNatsURL(config.NatsURL))
	}
	if err := util.WaitForRequiredServices(parent, required...); err != nil {
		log.Error("required services not ready", log.ErrorField(err))
		return err
	}

	sessionID := uuid.Must(uuid.NewV7())
	log.Info("Starting recording session",
		log.String("session", sessionID.String()),
		log.Int("port", config.Port),
		log.String("autoSaveFolder", config.AutoSaveFolder))

	p, err := newPipeline(sessionID, logger)
	if err != nil {
		log.Error("recording could not be started", log.ErrorField(err))
		return err
	}

	samples := make(chan model.Sample, config.SampleBuffer)
	listener := udp.NewListener(
		fmt.Sprintf(":%d", config.Port), f1.Decode, samples,
		udp.WithLogger(logger.Named("udp")))
	if err := listener.Listen(); err != nil {
		p.shutdown()
		log.Error("could not listen", log.ErrorField(err))
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := listener.Serve(ctx); err != nil {
			log.Error("listener stopped", log.ErrorField(err))
			stop()
		}
	}()

	proc := processing.NewProcessor(
		processing.WithPublisher(p.records),
		processing.WithProgressEvery(config.ProgressEvery),
		processing.WithLogger(logger.Named("processor")),
		processing.WithDetectorOptions(
			lap.WithWrap(
				decimal.NewFromInt(int64(config.WrapFrom)),
				decimal.NewFromInt(int64(config.WrapTo))),
			lap.WithJitter(decimal.NewFromInt(int64(config.JitterTolerance))),
		),
	)
	log.Info("Recorder started")
	proc.Run(ctx, samples)

	c := proc.Counters()
	log.Info("Recording stopped",
		log.Int64("samples", c.Samples),
		log.Int64("accepted", c.Accepted),
		log.Int64("dropped", c.Dropped),
		log.Int64("discarded", c.Discarded),
		log.Int64("unpublished", c.Unpublished),
		log.Int("laps", proc.Store().Len()),
		log.Int64("packets", listener.Stats().Packets))
	p.shutdown()
	log.Info("Recorder terminated")
	return nil
}

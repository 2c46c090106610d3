package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundjury/soundjury/internal/app"
	"github.com/soundjury/soundjury/internal/config"
	"github.com/soundjury/soundjury/internal/logger"
	"github.com/soundjury/soundjury/internal/recorder"
)

// record drives a full recording session from the terminal: acquire a
// local audio source, capture under the hard time limit, then submit
// through the same pipeline the server uses.
func main() {
	rootCmd := &cobra.Command{
		Use:   "record",
		Short: "Record and submit clips from the command line",
	}

	rootCmd.AddCommand(clipCmd())
	rootCmd.AddCommand(quotaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func clipCmd() *cobra.Command {
	var actorID string
	var source string
	var discard bool

	cmd := &cobra.Command{
		Use:   "clip",
		Short: "Record a clip from an audio source and submit it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			f, err := os.Open(source)
			if err != nil {
				return fmt.Errorf("failed to open audio source: %w", err)
			}
			defer func() { _ = f.Close() }()

			device := &recorder.ReaderDevice{Source: f, MimeType: "audio/webm"}
			session := recorder.NewSession(device, a.QuotaService, actorID, cfg.RecordLimit)
			defer func() { _ = session.Close() }()

			err = session.Start()
			if err != nil {
				return err
			}
			fmt.Printf("Recording (max %s), press Enter to stop...\n", cfg.RecordLimit)

			stopped := make(chan struct{})
			go func() {
				reader := bufio.NewReader(os.Stdin)
				_, _ = reader.ReadString('\n')
				close(stopped)
			}()

			var clip *recorder.Clip
		wait:
			for {
				select {
				case <-stopped:
					clip, err = session.Stop()
					if err != nil {
						return err
					}
					break wait
				case <-time.After(100 * time.Millisecond):
					if session.State() == recorder.StateRecorded {
						// Hit the ceiling; the clip is still usable.
						clip = session.Clip()
						fmt.Println("Recording stopped automatically at the time limit.")
						break wait
					}
				}
			}

			fmt.Printf("Captured %d bytes over %s\n", len(clip.Data), clip.Duration.Round(time.Millisecond))

			if discard {
				fmt.Println("Discarding clip; no attempt used.")
				return session.Discard()
			}

			id, err := session.Submit(a.SubmissionService)
			if err != nil {
				return err
			}

			fmt.Printf("Submitted clip %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "", "actor id submitting the clip")
	cmd.Flags().StringVar(&source, "source", "", "path to the audio source")
	cmd.Flags().BoolVar(&discard, "discard", false, "record but do not submit")
	_ = cmd.MarkFlagRequired("actor")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func quotaCmd() *cobra.Command {
	var actorID string

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show how many submissions an actor has left today",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			remaining, err := a.QuotaService.Remaining(actorID, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("%d/%d attempts remaining today\n", remaining, a.QuotaService.Limit())
			return nil
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "", "actor id")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}

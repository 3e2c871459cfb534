package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fieldservice/reportgen/internal/config"
	"github.com/fieldservice/reportgen/pkg/api"
	"github.com/fieldservice/reportgen/pkg/httpapi"
	"github.com/fieldservice/reportgen/pkg/orchestrator"
	"github.com/fieldservice/reportgen/pkg/renderers/tui"
)

type app struct {
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{logger: logrus.New()}

	root := &cobra.Command{
		Use:           "reportgen",
		Short:         "Generate service-report forms and PDF documents",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger.SetLevel(cfg.Level())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file")

	root.AddCommand(newServeCommand(a))
	root.AddCommand(newFormCommand(a))
	root.AddCommand(newFillCommand(a))
	root.AddCommand(newReportCommand(a))
	return root
}

// orchestrator builds the shared pipeline from the loaded configuration.
func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	source, err := api.New(a.cfg.API.BaseURL,
		api.WithToken(a.cfg.API.Token),
		api.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	options := []orchestrator.Option{
		orchestrator.WithReferenceSource(source),
		orchestrator.WithLogger(a.logger),
	}
	if path := a.cfg.Report.LetterheadPath; path != "" {
		letterhead, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read letterhead: %w", err)
		}
		options = append(options, orchestrator.WithLetterhead(letterhead))
	}
	return orchestrator.New(options...), nil
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the form and report endpoints over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.orchestrator()
			if err != nil {
				return err
			}
			server := httpapi.New(o, httpapi.WithLogger(a.logger))
			a.logger.WithField("listen", a.cfg.Server.Listen).Info("starting server")
			return http.ListenAndServe(a.cfg.Server.Listen, server.Handler())
		},
	}
}

func newFormCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "form",
		Short: "Render the service-report form as HTML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.orchestrator()
			if err != nil {
				return err
			}
			result, err := o.RenderForm(cmd.Context(), orchestrator.FormRequest{})
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(result.Output)
				return err
			}
			return os.WriteFile(output, result.Output, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func newReportCommand(a *app) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the PDF report from a saved JSON submission",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			var payload map[string]any
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("decode submission: %w", err)
			}

			o, err := a.orchestrator()
			if err != nil {
				return err
			}
			record, err := o.NewRecord(cmd.Context())
			if err != nil {
				return err
			}
			if err := record.ApplyValues(payload); err != nil {
				return err
			}

			result, err := o.SubmitReport(cmd.Context(), orchestrator.SubmitRequest{Record: record})
			if errors.Is(err, orchestrator.ErrInvalidReport) {
				for field, messages := range result.Validation.Fields {
					for _, message := range messages {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, message)
					}
				}
				return fmt.Errorf("report is incomplete")
			}
			if err != nil {
				return err
			}

			path := filepath.Join(a.cfg.Report.OutputDir, result.Filename)
			if err := os.WriteFile(path, result.Document, 0o644); err != nil {
				return err
			}
			a.logger.WithField("path", path).Info("report written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON submission file")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newFillCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Fill the service report interactively and render the PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.orchestrator()
			if err != nil {
				return err
			}
			record, err := o.NewRecord(cmd.Context())
			if err != nil {
				return err
			}
			if err := tui.New().Fill(cmd.Context(), record); err != nil {
				return err
			}

			result, err := o.SubmitReport(cmd.Context(), orchestrator.SubmitRequest{Record: record})
			if errors.Is(err, orchestrator.ErrInvalidReport) {
				for field, messages := range result.Validation.Fields {
					for _, message := range messages {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, message)
					}
				}
				return fmt.Errorf("report is incomplete")
			}
			if err != nil {
				return err
			}

			path := filepath.Join(a.cfg.Report.OutputDir, result.Filename)
			if err := os.WriteFile(path, result.Document, 0o644); err != nil {
				return err
			}
			a.logger.WithField("path", path).Info("report written")
			return nil
		},
	}
}

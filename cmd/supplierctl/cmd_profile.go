package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/models"
	"supplier-portal/internal/submission"
	"supplier-portal/internal/wizard"
)

func newProfileCmd(app *cliApp) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Show, submit and illustrate the supplier profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the signed-in supplier's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.client.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			return app.printJSON(p)
		},
	}

	var draftPath, documentPath string
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Walk the six wizard steps from a draft and submit",
		Long: `Loads the draft (from --draft, else the one saved in the session), walks
the wizard step by step and submits from the last step. A step that does not
validate stops the walk; the draft is saved to the session so it can be
fixed and resumed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileSubmit(cmd.Context(), app, draftPath, documentPath)
		},
	}
	submit.Flags().StringVar(&draftPath, "draft", "", "JSON draft file")
	submit.Flags().StringVar(&documentPath, "document", "", "verification document to upload")

	image := &cobra.Command{
		Use:   "image",
		Short: "Manage product images",
	}
	image.AddCommand(&cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a product image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return apperrors.NewUploadFailedError(args[0], err)
			}
			defer f.Close()

			name := filepath.Base(args[0])
			img, err := app.client.UploadProductImage(cmd.Context(), name, mime.TypeByExtension(filepath.Ext(name)), f)
			if err != nil {
				return err
			}
			app.printf("Uploaded image %s %s\n", img.ID, img.URL)
			return nil
		},
	}, &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client.DeleteProductImage(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.printf("Deleted image %s\n", args[0])
			return nil
		},
	})

	profile.AddCommand(show, submit, image)
	return profile
}

func runProfileSubmit(ctx context.Context, app *cliApp, draftPath, documentPath string) error {
	form, err := loadForm(ctx, app, draftPath)
	if err != nil {
		return err
	}

	pipeline := submission.NewPipeline(app.client, app.log)
	wz := wizard.New(form, pipeline,
		wizard.WithLogger(app.log),
		wizard.WithOnNavigate(func(step int) {
			app.printf("Step %d/%d: %s\n", step, wizard.LastStep, wizard.StepTitle(step))
		}),
	)

	if v, err := app.sess.TakeVerification(ctx); err == nil {
		wz.Apply(wizard.Hydrate(*v))
	} else if !errors.Is(err, session.ErrNotFound) {
		return err
	}
	if documentPath != "" {
		wz.Apply(func(f *models.ProfileFormData) {
			f.Document = &models.Document{Path: documentPath}
		})
	}

	app.printf("Step %d/%d: %s\n", wz.Step(), wizard.LastStep, wizard.StepTitle(wz.Step()))
	for wz.Step() < wizard.LastStep {
		step, errs := wz.NextStep()
		if len(errs) > 0 {
			if err := app.sess.SaveDraft(ctx, wz.Form()); err != nil {
				return err
			}
			return fmt.Errorf("step %d (%s) is incomplete:\n%s", step, wizard.StepTitle(step), formatStepErrors(errs))
		}
	}

	if err := wz.Confirm(); err != nil {
		return err
	}
	out, err := wz.Submit(ctx)
	if err != nil {
		if saveErr := app.sess.SaveDraft(ctx, wz.Form()); saveErr != nil {
			app.log.WithError(saveErr).Warn("Could not save draft after failed submission", nil)
		}
		if out != nil && out.Message != "" {
			return errors.New(out.Message)
		}
		return err
	}

	if err := app.sess.DiscardDraft(ctx); err != nil {
		app.log.WithError(err).Warn("Could not discard submitted draft", nil)
	}
	app.printf("%s\n", out.Message)
	return nil
}

// loadForm prefers the draft file, then the session draft, then defaults.
func loadForm(ctx context.Context, app *cliApp, path string) (*models.ProfileFormData, error) {
	if path != "" {
		return readDraftFile(path)
	}
	form, err := app.sess.LoadDraft(ctx)
	if errors.Is(err, session.ErrNotFound) {
		return models.NewProfileFormData(), nil
	}
	return form, err
}

func readDraftFile(path string) (*models.ProfileFormData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("read draft: %v", err))
	}
	form, err := models.LoadDraft(data)
	if err != nil {
		var std *apperrors.StandardError
		if errors.As(err, &std) {
			if fields, ok := std.Metadata["fields"].(map[string][]string); ok {
				return nil, fmt.Errorf("%s:\n%s", std.Message, submission.FormatValidationErrors(fields))
			}
		}
		return nil, err
	}
	return form, nil
}

func formatStepErrors(errs wizard.StepErrors) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("  %s: %s", submission.FieldLabel(f), errs[f]))
	}
	return strings.Join(lines, "\n")
}

func newDraftCmd(app *cliApp) *cobra.Command {
	draft := &cobra.Command{
		Use:   "draft",
		Short: "Keep a wizard draft in the session store",
	}
	draft.AddCommand(&cobra.Command{
		Use:   "save <file>",
		Short: "Validate a draft file and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := readDraftFile(args[0])
			if err != nil {
				return err
			}
			if err := app.sess.SaveDraft(cmd.Context(), form); err != nil {
				return err
			}
			app.printf("Draft saved\n")
			return nil
		},
	}, &cobra.Command{
		Use:   "show",
		Short: "Print the stored draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := app.sess.LoadDraft(cmd.Context())
			if errors.Is(err, session.ErrNotFound) {
				return apperrors.NewInvalidInputError("no draft saved")
			}
			if err != nil {
				return err
			}
			return app.printJSON(form)
		},
	}, &cobra.Command{
		Use:   "discard",
		Short: "Drop the stored draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.sess.DiscardDraft(cmd.Context()); err != nil {
				return err
			}
			app.printf("Draft discarded\n")
			return nil
		},
	})
	return draft
}

package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"supplier-portal/internal/admin"
	"supplier-portal/internal/businessprofile"
	"supplier-portal/internal/common/config"
	"supplier-portal/internal/common/validation"
	"supplier-portal/internal/models"
	"supplier-portal/internal/partners"
)

func (a *cliApp) loader() *businessprofile.Loader {
	return businessprofile.NewLoader(a.client, a.sess,
		businessprofile.WithLoaderLogger(a.log),
		businessprofile.WithSearchTracking(a.cfg.Analytics.Enabled && a.cfg.Analytics.TrackSearch),
	)
}

func newBusinessesCmd(app *cliApp) *cobra.Command {
	businesses := &cobra.Command{
		Use:     "businesses",
		Aliases: []string{"biz"},
		Short:   "Browse public business profiles",
	}

	var q models.BusinessListQuery
	var lat, lng float64
	list := &cobra.Command{
		Use:   "list",
		Short: "Search the public directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				q.Lat, q.Lng = &lat, &lng
			}
			resp, err := app.loader().Search(cmd.Context(), q)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tRATING\tADDRESS")
			for _, b := range resp.Data {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n", b.ID, b.BusinessName, b.Category, b.Rating, b.Address)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			app.printf("Page %d of %d, %d results\n", resp.Meta.CurrentPage, resp.Meta.LastPage, resp.Meta.Total)
			return nil
		},
	}
	list.Flags().StringVar(&q.Keyword, "keyword", "", "search keyword")
	list.Flags().StringVar(&q.Category, "category", "", "category filter")
	list.Flags().StringVar(&q.Location, "location", "", "location text")
	list.Flags().Float64Var(&lat, "lat", 0, "latitude for a radius search")
	list.Flags().Float64Var(&lng, "lng", 0, "longitude for a radius search")
	list.Flags().Float64Var(&q.RadiusKm, "radius", 0, "radius in km")
	list.Flags().IntVar(&q.Page, "page", 1, "page number")
	list.Flags().IntVar(&q.PerPage, "per-page", 20, "results per page")

	var dwell time.Duration
	show := &cobra.Command{
		Use:   "show <supplier-id>",
		Short: "Show a business profile and record the visit",
		Long: `Shows a business profile. The visit is tracked like a page view: one
call once the minimum dwell has passed and one with the total duration when
the command ends. --dwell keeps the profile "open" for that long; Ctrl-C
ends the visit early.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBusinessShow(cmd.Context(), app, args[0], dwell)
		},
	}
	show.Flags().DurationVar(&dwell, "dwell", 0, "how long to keep the profile open")

	businesses.AddCommand(list, show)
	return businesses
}

func runBusinessShow(ctx context.Context, app *cliApp, supplierID string, dwell time.Duration) error {
	decision, err := app.loader().Load(ctx, supplierID)
	if err != nil {
		return err
	}
	if decision.Redirect {
		return fmt.Errorf("profile %s is only visible to signed-in users, run \"supplierctl login\" first (redirect: %s)", supplierID, decision.RedirectTo)
	}

	if app.cfg.Analytics.Enabled {
		tracker := businessprofile.NewViewTracker(app.client, supplierID,
			businessprofile.WithMinDwell(config.GetDuration(app.cfg.Analytics.MinDwell)),
			businessprofile.WithTrackerLogger(app.log),
		)
		tracker.Start(ctx)
		defer tracker.Stop(context.WithoutCancel(ctx))
	}

	if err := app.printJSON(decision.Profile); err != nil {
		return err
	}

	if dwell > 0 {
		select {
		case <-time.After(dwell):
		case <-ctx.Done():
		}
	}
	return nil
}

func newReviewCmd(app *cliApp) *cobra.Command {
	var req models.ReviewRequest

	cmd := &cobra.Command{
		Use:   "review <supplier-id>",
		Short: "Rate a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SupplierID = args[0]
			if fields := req.Validate(); len(fields) > 0 {
				return fieldsError(fields)
			}
			resp, err := app.client.SubmitReview(cmd.Context(), req)
			if err != nil {
				return inlineErrors(err)
			}
			app.printf("%s\n", messageOr(resp.Message, "Review submitted"))
			return nil
		},
	}
	cmd.Flags().IntVar(&req.Rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "optional comment")
	return cmd
}

func newInquiryCmd(app *cliApp) *cobra.Command {
	var req models.InquiryRequest

	cmd := &cobra.Command{
		Use:   "inquiry <supplier-id>",
		Short: "Send an inquiry to a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SupplierID = args[0]
			if fields := req.Validate(validation.ValidateEmail); len(fields) > 0 {
				return fieldsError(fields)
			}
			resp, err := app.client.SendInquiry(cmd.Context(), req)
			if err != nil {
				return inlineErrors(err)
			}
			app.printf("%s (id %s, %s)\n", messageOr(resp.Message, "Inquiry sent"), resp.ID, resp.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "your name")
	cmd.Flags().StringVar(&req.Email, "email", "", "reply-to email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "optional phone")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&req.Message, "message", "", "message, at most 2000 characters")
	return cmd
}

func newDashboardCmd(app *cliApp) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show admin statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := admin.NewDashboard(app.client, app.sess, app.log).Stats(cmd.Context(), days)
			if err != nil {
				return err
			}
			return app.printJSON(stats)
		},
	}
	cmd.Flags().IntVar(&days, "range", admin.DefaultRangeDays, "window in days (7, 30, 90 or 365)")
	return cmd
}

func newPartnersCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "partners",
		Short: "Show trusted partners and partnership statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := partners.Load(cmd.Context(), app.client)
			if err != nil {
				return err
			}
			return app.printJSON(section)
		},
	}
}

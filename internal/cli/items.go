package cli

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/campusfinder/internal/api"
	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/route"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

func (a *app) lsCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List lost and found items",
		Example: `  campusfinder ls
  campusfinder ls --type found`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if kind != "" {
				k, err := model.ParseKind(kind)
				if err != nil {
					return &usageError{err: err}
				}
				items, err := a.client.ListItems(ctx, k)
				if err != nil {
					return fmt.Errorf("list %s items: %w", k.Param(), err)
				}
				a.printSection(titleOf(k), items)
				return nil
			}

			var lost, found []model.Item
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				lost, err = a.client.ListLost(gctx)
				return err
			})
			g.Go(func() (err error) {
				found, err = a.client.ListFound(gctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return fmt.Errorf("list items: %w", err)
			}
			a.printGrouped(lost, found)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "", "only lost or found items")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var f model.Filter
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search items by name and category",
		Example: `  campusfinder search --name wallet
  campusfinder search --category "ID Card"`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.client.Search(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			a.log.Debug("search done",
				zap.String("item_name", f.ItemName),
				zap.String("category", f.Category),
				zap.Int("results", len(items)))
			lost, found := model.Partition(items)
			a.printGrouped(lost, found)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.ItemName, "name", "n", "", "part of the item name")
	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "category: "+strings.Join(model.SearchCategories[1:], ", "))
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report a lost or found item (login required)",
	}
	cmd.AddCommand(a.reportKindCmd(model.Lost), a.reportKindCmd(model.Found))
	return cmd
}

func (a *app) reportKindCmd(kind model.Kind) *cobra.Command {
	page := route.ReportLost
	short := "Report something you lost"
	if kind == model.Found {
		page = route.ReportFound
		short = "Report something you found"
	}
	r := model.NewReport(kind)
	cmd := &cobra.Command{
		Use:         kind.Param(),
		Short:       short,
		Annotations: map[string]string{pageAnnotation: string(page)},
		Example: fmt.Sprintf(`  campusfinder report %s --name "Blue backpack" --date 2025-01-31 \
    --location Library --description "Has a laptop inside"`, kind.Param()),
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.Validate(); err != nil {
				return &usageError{err: err}
			}
			it, err := a.client.Report(cmd.Context(), kind, r)
			if err != nil {
				if kind == model.Found {
					return fmt.Errorf("failed to submit report: %w", err)
				}
				return fmt.Errorf("failed to report item: %w", err)
			}
			msg := "Item reported successfully!"
			if kind == model.Found {
				msg = "Great job! Item reported as found."
			}
			if it != nil && it.ID != "" {
				msg += " (#" + it.ID.String() + ")"
			}
			ui.OK(a.out(), msg)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&r.ItemName, "name", "n", "", "item name (required)")
	fl.StringVarP(&r.Category, "category", "c", r.Category, "category: "+strings.Join(model.ReportCategories, ", "))
	fl.StringVarP(&r.Date, "date", "d", "", "date as YYYY-MM-DD (required)")
	fl.StringVarP(&r.Location, "location", "l", "", "where (required)")
	fl.StringVar(&r.Description, "description", "", "what it looks like (required)")
	fl.StringVar(&r.ContactInfo, "contact", "", "how to reach you")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one of your items (login required)",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			id := model.ID(strings.TrimPrefix(strings.TrimSpace(args[0]), "#"))
			if err := a.client.DeleteItem(cmd.Context(), id); err != nil {
				if api.IsStatus(err, http.StatusForbidden) || api.IsStatus(err, http.StatusNotFound) {
					return fmt.Errorf("item #%s not found or not yours", id)
				}
				return fmt.Errorf("error deleting item: %w", err)
			}
			ui.OK(a.out(), "Item deleted")
			return nil
		},
	}
}

func titleOf(k model.Kind) string {
	if k == model.Found {
		return "Found Items"
	}
	return "Lost Items"
}

func (a *app) sectionLines(title string, items []model.Item) []string {
	t := ui.Current()
	lines := []string{t.Title.Render(fmt.Sprintf("%s (%d)", title, len(items)))}
	if len(items) == 0 {
		return append(lines, t.Muted.Render("No items found."))
	}
	me := a.sessions.Get()
	for i, it := range items {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, ui.Card(it, model.IsOwner(me, it))...)
	}
	return lines
}

func (a *app) printSection(title string, items []model.Item) {
	fmt.Fprintln(a.out(), ui.Panel(a.sectionLines(title, items)))
}

func (a *app) printGrouped(lost, found []model.Item) {
	lines := a.sectionLines(titleOf(model.Lost), lost)
	lines = append(lines, "")
	lines = append(lines, a.sectionLines(titleOf(model.Found), found)...)
	fmt.Fprintln(a.out(), ui.Panel(lines))
}

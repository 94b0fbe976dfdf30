package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-queue/internal/cli"
	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long:  `List, add, update, and delete the categories queue items are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func parseCategoryType(s string) (model.CategoryType, error) {
	switch model.CategoryType(strings.ToLower(s)) {
	case model.CategoryTypeAny:
		return model.CategoryTypeAny, nil
	case model.CategoryTypeIncome:
		return model.CategoryTypeIncome, nil
	case model.CategoryTypeExpense:
		return model.CategoryTypeExpense, nil
	default:
		return "", fmt.Errorf("invalid category type %q (want income or expense)", s)
	}
}

func listCategoriesCmd() *cobra.Command {
	var (
		typeArg string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories as a tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			categoryType, err := parseCategoryType(typeArg)
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			categories, err := client.ListCategories(cmd.Context(), categoryType)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, categories)
			}
			if len(categories) == 0 {
				writeLine(out, cli.FormatInfo("No categories found. Use 'xq categories add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(categories))
			for _, node := range model.CategoryTree(categories) {
				name := format.Sanitize(node.Name)
				if node.Icon != "" {
					name = node.Icon + " " + name
				}
				rows = append(rows, []string{
					fmt.Sprint(node.ID),
					strings.Repeat("  ", node.Depth) + name,
					string(node.CategoryType),
					node.Color,
				})
			}
			writeLine(out, cli.RenderTable([]string{"ID", "Name", "Type", "Color"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeArg, "type", "", "only income or expense categories")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// categoryFlags holds the editable category fields.
type categoryFlags struct {
	name     string
	color    string
	icon     string
	typ      string
	parentID int
}

func (f *categoryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.color, "color", "", "display color, e.g. #22AA66")
	cmd.Flags().StringVar(&f.icon, "icon", "", "display icon")
	cmd.Flags().StringVar(&f.typ, "type", "", "income or expense")
	cmd.Flags().IntVar(&f.parentID, "parent", 0, "parent category id")
}

func (f *categoryFlags) input() (model.CategoryInput, error) {
	categoryType, err := parseCategoryType(f.typ)
	if err != nil {
		return model.CategoryInput{}, err
	}
	return model.CategoryInput{
		Name:         strings.TrimSpace(f.name),
		Color:        f.color,
		Icon:         f.icon,
		CategoryType: categoryType,
		ParentID:     optionalID(f.parentID),
	}, nil
}

func addCategoryCmd() *cobra.Command {
	var flags categoryFlags

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.name = args[0]
			input, err := flags.input()
			if err != nil {
				return err
			}
			if input.Name == "" {
				return fmt.Errorf("category name is required")
			}
			client, err := newClient()
			if err != nil {
				return err
			}

			category, err := client.CreateCategory(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (ID: %d)", category.Name, category.ID)))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var flags categoryFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			input, err := flags.input()
			if err != nil {
				return err
			}
			if input == (model.CategoryInput{}) {
				return fmt.Errorf("nothing to update: pass --name, --color, --icon, --type or --parent")
			}
			client, err := newClient()
			if err != nil {
				return err
			}

			category, err := client.UpdateCategory(cmd.Context(), id, input)
			if err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %q (ID: %d)", category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "new name")
	flags.register(cmd)
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := confirm(cmd.Context(), prompterFor(cmd), fmt.Sprintf("Delete category #%d?", id)); err != nil {
				return err
			}
			if err := client.DeleteCategory(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category #%d", id)))
			return nil
		},
	}
}

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "merchants",
		Aliases: []string{"merchant"},
		Short:   "Manage merchant aliases",
	}

	cmd.AddCommand(listMerchantsCmd())
	cmd.AddCommand(searchMerchantsCmd())
	cmd.AddCommand(addMerchantCmd())

	return cmd
}

func renderMerchants(merchants []model.Merchant) string {
	rows := make([][]string, 0, len(merchants))
	for _, m := range merchants {
		category := ""
		if m.DefaultCategoryID != nil {
			category = fmt.Sprint(*m.DefaultCategoryID)
		}
		rows = append(rows, []string{
			fmt.Sprint(m.ID),
			format.Sanitize(m.DisplayName),
			format.Sanitize(m.RawName),
			category,
		})
	}
	return cli.RenderTable([]string{"ID", "Name", "Raw name", "Default category"}, rows)
}

func listMerchantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List merchants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			merchants, err := client.ListMerchants(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list merchants: %w", err)
			}
			if len(merchants) == 0 {
				writeLine(cmd.OutOrStdout(), cli.FormatInfo("No merchants yet"))
				return nil
			}
			writeLine(cmd.OutOrStdout(), renderMerchants(merchants))
			return nil
		},
	}
}

func searchMerchantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search merchants by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			merchants, err := client.SearchMerchants(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("failed to search merchants: %w", err)
			}
			if len(merchants) == 0 {
				writeLine(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("No merchants match %q", args[0])))
				return nil
			}
			writeLine(cmd.OutOrStdout(), renderMerchants(merchants))
			return nil
		},
	}
}

func addMerchantCmd() *cobra.Command {
	var (
		rawName    string
		categoryID int
	)

	cmd := &cobra.Command{
		Use:   "add <display name>",
		Short: "Add a merchant alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("merchant name is required")
			}
			if rawName == "" {
				rawName = name
			}
			client, err := newClient()
			if err != nil {
				return err
			}

			merchant, err := client.CreateMerchant(cmd.Context(), model.MerchantInput{
				DisplayName:       name,
				RawName:           rawName,
				DefaultCategoryID: optionalID(categoryID),
			})
			if err != nil {
				return fmt.Errorf("failed to create merchant: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created merchant %q (ID: %d)", merchant.DisplayName, merchant.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&rawName, "raw-name", "", "bank statement name (default: the display name)")
	cmd.Flags().IntVar(&categoryID, "category", 0, "default category id")
	return cmd
}

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
	}

	cmd.AddCommand(listTagsCmd())
	cmd.AddCommand(addTagCmd())
	cmd.AddCommand(deleteTagsCmd())

	return cmd
}

func listTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			tags, err := client.ListTags(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}
			if len(tags) == 0 {
				writeLine(cmd.OutOrStdout(), cli.FormatInfo("No tags yet"))
				return nil
			}
			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				rows = append(rows, []string{fmt.Sprint(tag.ID), format.Sanitize(tag.Name), tag.Color})
			}
			writeLine(cmd.OutOrStdout(), cli.RenderTable([]string{"ID", "Name", "Color"}, rows))
			return nil
		},
	}
}

func addTagCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(strings.TrimSpace(args[0]))
			if name == "" {
				return fmt.Errorf("tag name is required")
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			tag, err := client.CreateTag(cmd.Context(), model.TagInput{Name: name, Color: color})
			if err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created tag %q (ID: %d)", tag.Name, tag.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "display color")
	return cmd
}

func deleteTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ids...>",
		Short: "Delete tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			noun := "tag"
			if len(ids) != 1 {
				noun = "tags"
			}
			if err := confirm(cmd.Context(), prompterFor(cmd), fmt.Sprintf("Delete %d %s?", len(ids), noun)); err != nil {
				return err
			}

			ctx, stop := interruptible(cmd)
			defer stop()

			progress := cli.NewProgress(cmd.ErrOrStderr(), len(ids), "Deleting tags")
			var failures []string
			for _, id := range ids {
				if err := ctx.Err(); err != nil {
					progress.Finish()
					return err
				}
				err := client.DeleteTag(ctx, id)
				progress.Step(err)
				if err != nil {
					failures = append(failures, fmt.Sprintf("#%d: %v", id, err))
				}
			}
			progress.Finish()

			if len(failures) > 0 {
				for _, f := range failures {
					writeLine(cmd.ErrOrStderr(), cli.SubtleStyle.Render("  "+f))
				}
				return fmt.Errorf("deleted %d of %d tags", progress.Done(), len(ids))
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d %s", progress.Done(), noun)))
			return nil
		},
	}
}

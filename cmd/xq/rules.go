package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-queue/internal/cli"
	"github.com/Veraticus/expense-queue/internal/format"
	"github.com/Veraticus/expense-queue/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage rules that discard or save matching queue items",
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(toggleRuleCmd())
	cmd.AddCommand(deleteRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			rules, err := client.ListRules(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}
			if len(rules) == 0 {
				writeLine(cmd.OutOrStdout(), cli.FormatInfo("No rules yet. Use 'xq rules add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(rules))
			for _, r := range rules {
				status := cli.SuccessStyle.Render("on")
				if !r.Active {
					status = cli.SubtleStyle.Render("off")
				}
				rows = append(rows, []string{
					fmt.Sprint(r.ID),
					format.Sanitize(r.Name),
					fmt.Sprintf("%s %s %q", r.Field, r.MatchType, r.MatchValue),
					string(r.Action),
					status,
				})
			}
			writeLine(cmd.OutOrStdout(), cli.RenderTable([]string{"ID", "Name", "Match", "Action", "Active"}, rows))
			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	var (
		name        string
		field       string
		matchType   string
		action      string
		categoryID  int
		merchant    string
		typeArg     string
		description string
		tags        []string
		inactive    bool
	)

	cmd := &cobra.Command{
		Use:   "add <match value>",
		Short: "Add a rule",
		Example: `  xq rules add "SPOTIFY" --action save --merchant Spotify --category 4 --type fixed
  xq rules add "^TFR TO SAVINGS" --match regex --action discard`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			active := !inactive
			input := model.RuleInput{
				Name:       name,
				Field:      model.RuleField(field),
				MatchType:  model.MatchType(matchType),
				MatchValue: args[0],
				Action:     model.RuleAction(action),
				Active:     &active,
			}
			if input.Name == "" {
				input.Name = args[0]
			}

			if input.Action == model.ActionSave {
				data := &model.RuleSaveData{
					CategoryID:   optionalID(categoryID),
					MerchantName: strings.TrimSpace(merchant),
					Description:  description,
					Tags:         tags,
				}
				if typeArg != "" {
					typ, err := model.ParseExpenseType(typeArg)
					if err != nil {
						return err
					}
					data.Type = typ
				}
				input.SaveData = data
			}
			if err := input.Validate(); err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			rule, err := client.CreateRule(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created rule %q (ID: %d)", rule.Name, rule.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "rule name (default: the match value)")
	cmd.Flags().StringVar(&field, "field", string(model.FieldRawMerchantName), "raw_merchant_name, raw_description, amount or source")
	cmd.Flags().StringVar(&matchType, "match", string(model.MatchExact), "exact or regex")
	cmd.Flags().StringVar(&action, "action", string(model.ActionDiscard), "discard or save")
	cmd.Flags().IntVar(&categoryID, "category", 0, "category id for saved expenses")
	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant name for saved expenses")
	cmd.Flags().StringVar(&typeArg, "type", "", "expense type for saved expenses")
	cmd.Flags().StringVar(&description, "description", "", "description for saved expenses")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags for saved expenses")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the rule switched off")
	return cmd
}

func toggleRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch a rule on or off",
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
			rules, err := client.ListRules(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			var current *model.Rule
			for i := range rules {
				if rules[i].ID == id {
					current = &rules[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("rule #%d not found", id)
			}

			active := !current.Active
			rule, err := client.UpdateRule(cmd.Context(), id, model.RuleInput{Active: &active})
			if err != nil {
				return fmt.Errorf("failed to update rule: %w", err)
			}
			state := "off"
			if rule.Active {
				state = "on"
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Rule %q is now %s", rule.Name, state)))
			return nil
		},
	}
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
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
			if err := confirm(cmd.Context(), prompterFor(cmd), fmt.Sprintf("Delete rule #%d?", id)); err != nil {
				return err
			}
			if err := client.DeleteRule(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted rule #%d", id)))
			return nil
		},
	}
}

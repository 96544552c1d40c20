package main

import (
	"fmt"
	"io"
	"os"

	"superclaims/internal/decision"
	"superclaims/internal/dto"
	"superclaims/internal/models"
	"superclaims/internal/validation"
	"superclaims/pkg/config"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func loadPolicy(path string) (validation.Policy, error) {
	pc := config.DefaultPolicy()
	if path != "" {
		var err error
		if pc, err = config.LoadPolicyFile(path); err != nil {
			return validation.Policy{}, err
		}
	}
	return validation.NewPolicy(pc.RequiredTypes, pc.DateGraceDays, pc.CheckIdentifiers)
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var bundlePath, policyPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an extracted bundle and print the claim decision",
		Long: "Reads a JSON array of extracted records (each with a \"type\" of bill, " +
			"discharge_summary or id_card) and prints the validation result and decision.",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := loadPolicy(policyPath)
			if err != nil {
				return err
			}
			bundle, err := readBundle(bundlePath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			result, err := validation.NewValidator(policy, root.log).Validate(bundle)
			if err != nil {
				return err
			}
			out := dto.ValidateBundleResponse{
				Validation:    result,
				ClaimDecision: decision.NewEngine(decision.DefaultPolicy(), root.log).Decide(result),
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&bundlePath, "bundle", "", "bundle JSON file, - for stdin")
	cmd.Flags().StringVar(&policyPath, "policy", "", "validation policy YAML file")
	_ = cmd.MarkFlagRequired("bundle")
	return cmd
}

func newRulesCmd(root *rootOptions) *cobra.Command {
	var policyPath string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the validation rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := loadPolicy(policyPath)
			if err != nil {
				return err
			}
			for _, name := range validation.NewValidator(policy, root.log).Rules() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&policyPath, "policy", "", "validation policy YAML file")
	return cmd
}

func readBundle(path string, stdin io.Reader) (models.Bundle, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var bundle models.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return bundle, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Identify the type of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	_, text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	docType := evaluationService.Classify(cmd.Context(), text)

	if classifyJSON {
		data, err := json.MarshalIndent(map[string]any{
			"documentType": string(docType),
			"displayName":  docType.DisplayName(),
			"supported":    docType.IsKnown(),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%s (%s)\n", docType.DisplayName(), docType)
	if !docType.IsKnown() {
		cmd.Println("This document type is not supported.")
	}
	return nil
}
